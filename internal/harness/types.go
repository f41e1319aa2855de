package harness

import (
	"fmt"

	"github.com/roach88/sortviz/internal/ir"
)

// Trace line types.
const (
	TraceStep    = "step"
	TraceCommand = "command"
)

// TraceEvent is one line of a scenario trace: a step event emitted by the
// driver, or a command the harness applied.
type TraceEvent struct {
	Type        string `json:"type"`
	Seq         int64  `json:"seq"` // for commands, the last event seq before it
	Kind        string `json:"kind,omitempty"`
	I           int    `json:"i"`
	J           int    `json:"j"`
	Comparisons uint64 `json:"comparisons"`
	Swaps       uint64 `json:"swaps"`
	Action      string `json:"action,omitempty"`
	Value       int    `json:"value,omitempty"`
}

// Label renders the line for assertion matching.
func (e TraceEvent) Label() string {
	if e.Type == TraceCommand {
		if e.Action == ActionSpeed {
			return fmt.Sprintf("%s %d", e.Action, e.Value)
		}
		return e.Action
	}
	if e.Kind == ir.EventDone.String() {
		return e.Kind
	}
	return fmt.Sprintf("%s %d %d", e.Kind, e.I, e.J)
}

func stepTrace(e ir.StepEvent) TraceEvent {
	return TraceEvent{
		Type:        TraceStep,
		Seq:         e.Seq,
		Kind:        e.Kind.String(),
		I:           e.I,
		J:           e.J,
		Comparisons: e.Comparisons,
		Swaps:       e.Swaps,
	}
}

func commandTrace(cmd Command, seq int64) TraceEvent {
	return TraceEvent{
		Type:   TraceCommand,
		Seq:    seq,
		Action: cmd.Action,
		Value:  cmd.Value,
		I:      ir.NoIndex,
		J:      ir.NoIndex,
	}
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace is the delivered events and applied commands in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Run is the controller's result.
	Run ir.Result `json:"run"`

	// State is the stored run record as a field map, for final_state.
	State map[string]any `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]any),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// StepCount returns the number of step lines in the trace.
func (r *Result) StepCount() int {
	n := 0
	for _, e := range r.Trace {
		if e.Type == TraceStep {
			n++
		}
	}
	return n
}
