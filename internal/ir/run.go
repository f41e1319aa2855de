package ir

import (
	"fmt"
	"time"
)

// RunState is the lifecycle state of the active or most recent run.
type RunState int

const (
	StateIdle RunState = iota
	StateRunning
	StatePaused
	StateStopped
	StateCompleted
)

// String returns the lowercase state name.
func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Active reports whether a driver path exists in this state.
func (s RunState) Active() bool {
	return s == StateRunning || s == StatePaused
}

// Outcome is how a run terminated.
type Outcome string

const (
	// OutcomeCompleted means the driver exhausted its logic and emitted Done.
	OutcomeCompleted Outcome = "completed"
	// OutcomeCancelled means the driver unwound at a checkpoint after stop.
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeFaulted means the driver failed unexpectedly.
	OutcomeFaulted Outcome = "faulted"
)

// ParseOutcome validates an outcome name.
func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(s); o {
	case OutcomeCompleted, OutcomeCancelled, OutcomeFaulted:
		return o, nil
	}
	return "", fmt.Errorf("unknown outcome %q", s)
}

// RunInfo identifies a run at start.
type RunInfo struct {
	ID        string    `json:"id"`
	Algorithm Algorithm `json:"algorithm"`
	Size      int       `json:"size"`
	Input     []int     `json:"input"`
}

// Stats are the counters of a run.
type Stats struct {
	Comparisons uint64        `json:"comparisons"`
	Swaps       uint64        `json:"swaps"`
	Elapsed     time.Duration `json:"elapsed"`
}

// ElapsedSeconds returns Elapsed as fractional seconds.
func (s Stats) ElapsedSeconds() float64 {
	return s.Elapsed.Seconds()
}

// Result is the terminal report of a run.
type Result struct {
	RunInfo
	Outcome Outcome `json:"outcome"`
	Stats   Stats   `json:"stats"`
	Output  []int   `json:"output"`
	Events  int64   `json:"events"`
	Dropped int64   `json:"dropped"`
	Err     error   `json:"-"`
}

// View is a read-only snapshot for the rendering collaborator.
type View struct {
	Values      []int    `json:"values"`
	Highlight   [2]int   `json:"highlight"`
	Comparisons uint64   `json:"comparisons"`
	Swaps       uint64   `json:"swaps"`
	State       RunState `json:"state"`
	ShowNumbers bool     `json:"show_numbers"`
}

// Highlighted reports whether index i is one of the highlighted operands.
func (v View) Highlighted(i int) bool {
	return i != NoIndex && (v.Highlight[0] == i || v.Highlight[1] == i)
}
