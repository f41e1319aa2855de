package testutil

import (
	"slices"
	"sync"

	"github.com/roach88/sortviz/internal/ir"
)

// Recorder is a run observer that keeps every callback for inspection.
// Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	infos   []ir.RunInfo
	events  []ir.StepEvent
	results []ir.Result

	// OnEvent, if set, runs after each event is recorded, outside the lock.
	OnEvent func(ir.StepEvent)
}

func (r *Recorder) OnStart(info ir.RunInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, info)
}

func (r *Recorder) OnStep(e ir.StepEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	hook := r.OnEvent
	r.mu.Unlock()
	if hook != nil {
		hook(e)
	}
}

func (r *Recorder) OnFinish(res ir.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// Runs returns the start notifications seen so far.
func (r *Recorder) Runs() []ir.RunInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.infos)
}

// Events returns a copy of the events seen so far.
func (r *Recorder) Events() []ir.StepEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// EventCount returns the number of events seen so far.
func (r *Recorder) EventCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Results returns the finish notifications seen so far.
func (r *Recorder) Results() []ir.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.results)
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos, r.events, r.results = nil, nil, nil
}
