package engine

import (
	"errors"
	"fmt"
)

// StepBudget bounds the number of step events a single run may emit.
//
// Every driver terminates in at most O(n^2) steps, so a budget overrun means a
// driver bug rather than a slow input. The run is then reported as faulted
// and the controller returns to Idle.
//
// A zero limit disables the budget.
type StepBudget struct {
	limit   int64
	current int64
}

// NewStepBudget creates a budget with the given limit (0 = unlimited).
func NewStepBudget(limit int64) *StepBudget {
	return &StepBudget{limit: limit}
}

// Charge counts one step and validates against the limit.
// Called only from the driver path.
func (b *StepBudget) Charge(runID string) error {
	b.current++
	if b.limit > 0 && b.current > b.limit {
		return &StepsExceededError{
			RunID: runID,
			Steps: b.current,
			Limit: b.limit,
		}
	}
	return nil
}

// Current returns the number of charged steps.
func (b *StepBudget) Current() int64 {
	return b.current
}

// Limit returns the configured limit.
func (b *StepBudget) Limit() int64 {
	return b.limit
}

// DefaultStepLimit returns a generous budget for an input of size n:
// four times the worst case of the quadratic drivers plus slack.
func DefaultStepLimit(n int) int64 {
	size := int64(n)
	return 4*size*size + 64
}

// StepsExceededError is returned when a run exceeds its step budget.
type StepsExceededError struct {
	RunID string
	Steps int64
	Limit int64
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("run %s exceeded step budget: %d steps > %d limit",
		e.RunID, e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
