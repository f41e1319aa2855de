package engine

import (
	"slices"

	"github.com/roach88/sortviz/internal/ir"
)

// Stepper is the driver's view of one run: read access to the array,
// instrumented mutation, and the checkpoint of the run's Control.
//
// Every Compare passes through Checkpoint before it is counted and emitted,
// so stop and pause take effect within one logical step. Swap and
// Overwrite are not throttled; they always follow a Compare or an explicit
// Checkpoint in the same loop iteration.
//
// A Stepper is used only from the driver path and is not safe for
// concurrent use.
type Stepper struct {
	runID  string
	arr    *ArrayState
	ctl    *Control
	budget *StepBudget
	emit   func(ir.StepEvent)
	seq    int64
}

func newStepper(runID string, arr *ArrayState, ctl *Control, budget *StepBudget, emit func(ir.StepEvent)) *Stepper {
	return &Stepper{
		runID:  runID,
		arr:    arr,
		ctl:    ctl,
		budget: budget,
		emit:   emit,
	}
}

// Len returns the number of elements.
func (s *Stepper) Len() int {
	return s.arr.Len()
}

// At returns the element at i.
func (s *Stepper) At(i int) int {
	return s.arr.at(i)
}

// Slice copies the elements in [from, to).
func (s *Stepper) Slice(from, to int) []int {
	s.arr.mu.RLock()
	defer s.arr.mu.RUnlock()
	return slices.Clone(s.arr.values[from:to])
}

// Checkpoint blocks while paused, sleeps the current delay and returns
// ErrCancelled once stop has been requested.
func (s *Stepper) Checkpoint() error {
	return s.ctl.Checkpoint()
}

// CheckStop returns ErrCancelled if stop has been requested, without pausing
// or throttling. Recursive drivers call it on entry.
func (s *Stepper) CheckStop() error {
	if s.ctl.ShouldStop() {
		return ErrCancelled
	}
	return nil
}

// Compare checkpoints, then counts and emits a comparison of i and j.
func (s *Stepper) Compare(i, j int) error {
	if err := s.ctl.Checkpoint(); err != nil {
		return err
	}
	if err := s.budget.Charge(s.runID); err != nil {
		return err
	}
	comparisons, swaps := s.arr.compare(i, j)
	s.publish(ir.Compare(i, j), comparisons, swaps)
	return nil
}

// Swap exchanges i and j and emits a mutation.
func (s *Stepper) Swap(i, j int) error {
	if err := s.budget.Charge(s.runID); err != nil {
		return err
	}
	comparisons, swaps := s.arr.swap(i, j)
	s.publish(ir.Mutate(i, j), comparisons, swaps)
	return nil
}

// Overwrite stores v at dst and emits a mutation of (dst, from).
// Nothing is written if the step budget is exhausted.
func (s *Stepper) Overwrite(dst, from, v int) error {
	if err := s.budget.Charge(s.runID); err != nil {
		return err
	}
	comparisons, swaps := s.arr.overwrite(dst, from, v)
	s.publish(ir.Mutate(dst, from), comparisons, swaps)
	return nil
}

// Restore writes v at i silently. Drivers use it to put back values held
// in local buffers, so the array is a permutation of its input whenever the
// driver returns.
func (s *Stepper) Restore(i, v int) {
	s.arr.restore(i, v)
}

// Seq returns the number of events emitted so far.
func (s *Stepper) Seq() int64 {
	return s.seq
}

// done emits the terminal event.
func (s *Stepper) done() {
	comparisons, swaps := s.arr.Counters()
	s.publish(ir.Done(), comparisons, swaps)
}

func (s *Stepper) publish(e ir.StepEvent, comparisons, swaps uint64) {
	s.seq++
	e.Seq = s.seq
	e.Comparisons = comparisons
	e.Swaps = swaps
	s.emit(e)
}
