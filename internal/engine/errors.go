package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/sortviz/internal/ir"
)

// RunError represents a lifecycle or execution error of the run controller.
//
// Run errors include:
//   - Already running: Start while a run is active
//   - Invalid transition: pause/resume/stop outside Running/Paused
//   - Cancelled: the driver unwound at a checkpoint after stop
//   - Internal: the driver failed unexpectedly
//
// RunError matches by code with errors.Is, so callers can compare against
// the exported sentinels regardless of the message or run ID.
type RunError struct {
	// Code identifies the error category.
	Code RunErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run, if any.
	RunID string

	// State is the controller state observed when the error was raised.
	State ir.RunState

	// Err is the underlying cause (internal faults only).
	Err error
}

// RunErrorCode categorizes run errors.
type RunErrorCode string

const (
	// ErrCodeAlreadyRunning indicates Start was called while a run is active.
	ErrCodeAlreadyRunning RunErrorCode = "ALREADY_RUNNING"

	// ErrCodeInvalidTransition indicates a command not valid in the current state.
	ErrCodeInvalidTransition RunErrorCode = "INVALID_TRANSITION"

	// ErrCodeCancelled indicates the driver observed stop at a checkpoint.
	ErrCodeCancelled RunErrorCode = "CANCELLED"

	// ErrCodeInternal indicates an unexpected fault inside a driver.
	ErrCodeInternal RunErrorCode = "INTERNAL"
)

// Sentinels for errors.Is comparisons.
var (
	ErrAlreadyRunning    = &RunError{Code: ErrCodeAlreadyRunning, Message: "a run is already active"}
	ErrInvalidTransition = &RunError{Code: ErrCodeInvalidTransition, Message: "invalid state transition"}
	ErrCancelled         = &RunError{Code: ErrCodeCancelled, Message: "run cancelled by stop"}
)

// Error implements the error interface.
func (e *RunError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.RunID != "" {
		msg = fmt.Sprintf("%s (run=%s, state=%s)", msg, e.RunID, e.State)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RunError) Unwrap() error {
	return e.Err
}

// Is matches any RunError with the same code.
func (e *RunError) Is(target error) bool {
	var re *RunError
	if errors.As(target, &re) {
		return re.Code == e.Code
	}
	return false
}

// IsAlreadyRunning returns true if the error is an already-running error.
// Uses errors.As to handle wrapped errors.
func IsAlreadyRunning(err error) bool {
	return hasCode(err, ErrCodeAlreadyRunning)
}

// IsInvalidTransition returns true if the error is an invalid-transition error.
func IsInvalidTransition(err error) bool {
	return hasCode(err, ErrCodeInvalidTransition)
}

// IsCancelled returns true if the error is the cancellation signal.
func IsCancelled(err error) bool {
	return hasCode(err, ErrCodeCancelled)
}

// IsInternal returns true if the error reports a driver fault, including an
// exhausted step budget.
func IsInternal(err error) bool {
	return hasCode(err, ErrCodeInternal) || IsStepsExceededError(err)
}

func hasCode(err error, code RunErrorCode) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

func newAlreadyRunningError(runID string, state ir.RunState) *RunError {
	return &RunError{
		Code:    ErrCodeAlreadyRunning,
		Message: "a run is already active",
		RunID:   runID,
		State:   state,
	}
}

func newTransitionError(op string, runID string, state ir.RunState) *RunError {
	return &RunError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot %s while %s", op, state),
		RunID:   runID,
		State:   state,
	}
}

func newInternalError(runID string, cause error) *RunError {
	return &RunError{
		Code:    ErrCodeInternal,
		Message: "driver fault",
		RunID:   runID,
		State:   ir.StateIdle,
		Err:     cause,
	}
}
