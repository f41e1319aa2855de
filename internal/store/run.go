package store

import (
	"time"

	"github.com/roach88/sortviz/internal/ir"
)

// RunRecord is one row of run history.
type RunRecord struct {
	ID            string
	Algorithm     ir.Algorithm
	Size          int
	Input         []int
	InputHash     string
	Output        []int
	Outcome       ir.Outcome
	Comparisons   uint64
	Swaps         uint64
	Elapsed       time.Duration
	Events        int64
	Dropped       int64
	TraceHash     string // empty when no trace was recorded
	Error         string
	EngineVersion string
}

// NewRunRecord builds a record from a finished run. trace may be nil.
func NewRunRecord(res ir.Result, trace []ir.StepEvent) (RunRecord, error) {
	rec := RunRecord{
		ID:            res.ID,
		Algorithm:     res.Algorithm,
		Size:          res.Size,
		Input:         res.Input,
		InputHash:     ir.InputHash(res.Input),
		Output:        res.Output,
		Outcome:       res.Outcome,
		Comparisons:   res.Stats.Comparisons,
		Swaps:         res.Stats.Swaps,
		Elapsed:       res.Stats.Elapsed,
		Events:        res.Events,
		Dropped:       res.Dropped,
		EngineVersion: ir.EngineVersion,
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	if trace != nil {
		hash, err := ir.TraceHash(trace)
		if err != nil {
			return RunRecord{}, err
		}
		rec.TraceHash = hash
	}
	return rec, nil
}
