package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/sortviz/internal/ir"
)

// Recorder is a run observer that persists every finished run.
//
// With traces enabled it buffers the run's events in memory and writes them
// with the run row in one transaction. Write failures are logged and kept
// for Err; they never affect the run itself.
type Recorder struct {
	store  *Store
	ctx    context.Context
	traces bool
	logger *slog.Logger

	mu    sync.Mutex
	trace []ir.StepEvent
	err   error
}

// NewRecorder creates a recorder writing to s. ctx bounds every write.
func NewRecorder(ctx context.Context, s *Store, traces bool, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: s, ctx: ctx, traces: traces, logger: logger}
}

// OnStart resets the trace buffer.
func (r *Recorder) OnStart(ir.RunInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.traces {
		r.trace = []ir.StepEvent{}
	}
}

// OnStep buffers the event when traces are enabled.
func (r *Recorder) OnStep(e ir.StepEvent) {
	if !r.traces {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trace = append(r.trace, e)
}

// OnFinish writes the run.
func (r *Recorder) OnFinish(res ir.Result) {
	r.mu.Lock()
	trace := r.trace
	r.trace = nil
	r.mu.Unlock()

	err := r.write(res, trace)

	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

func (r *Recorder) write(res ir.Result, trace []ir.StepEvent) error {
	// A coalesced trace is incomplete and would not replay.
	if res.Dropped > 0 {
		trace = nil
	}
	rec, err := NewRunRecord(res, trace)
	if err != nil {
		r.logger.Error("run record failed", "run_id", res.ID, "error", err)
		return err
	}
	if err := r.store.WriteRun(r.ctx, rec, trace); err != nil {
		r.logger.Error("run write failed", "run_id", res.ID, "error", err)
		return err
	}
	r.logger.Debug("run recorded",
		"run_id", res.ID,
		"outcome", string(res.Outcome),
		"events", len(trace),
	)
	return nil
}

// Err returns the error of the most recent write, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
