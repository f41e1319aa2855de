package store

import (
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/roach88/sortviz/internal/ir"
)

// createTestStore creates a new temporary store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a completed run record with minimal required fields.
func createTestRun(id string, alg ir.Algorithm, input []int) RunRecord {
	output := slices.Clone(input)
	slices.Sort(output)
	return RunRecord{
		ID:            id,
		Algorithm:     alg,
		Size:          len(input),
		Input:         input,
		InputHash:     ir.InputHash(input),
		Output:        output,
		Outcome:       ir.OutcomeCompleted,
		Comparisons:   3,
		Swaps:         2,
		Elapsed:       42 * time.Millisecond,
		Events:        6,
		EngineVersion: ir.EngineVersion,
	}
}

// createTestTrace creates a small well-formed trace ending in Done.
func createTestTrace() []ir.StepEvent {
	events := []ir.StepEvent{
		ir.Compare(0, 1),
		ir.Mutate(0, 1),
		ir.Compare(1, 2),
		ir.Done(),
	}
	var comparisons, swaps uint64
	for i := range events {
		switch events[i].Kind {
		case ir.EventCompare:
			comparisons++
		case ir.EventMutate:
			swaps++
		}
		events[i].Seq = int64(i + 1)
		events[i].Comparisons = comparisons
		events[i].Swaps = swaps
	}
	return events
}
