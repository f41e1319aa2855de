package ir

import "fmt"

// NoIndex marks an absent operand index (Done events, cleared highlights).
const NoIndex = -1

// EventKind distinguishes step event variants.
type EventKind int

const (
	// EventCompare reports that elements I and J are about to be compared.
	EventCompare EventKind = iota + 1
	// EventMutate reports a swap of I and J, or an overwrite of I from J
	// during a shift or merge placement.
	EventMutate
	// EventDone is the terminal event of a run that exhausted its logic.
	EventDone
)

// String returns the wire name of the kind.
func (k EventKind) String() string {
	switch k {
	case EventCompare:
		return "compare"
	case EventMutate:
		return "mutate"
	case EventDone:
		return "done"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseEventKind is the inverse of EventKind.String.
func ParseEventKind(s string) (EventKind, error) {
	switch s {
	case "compare":
		return EventCompare, nil
	case "mutate":
		return EventMutate, nil
	case "done":
		return EventDone, nil
	default:
		return 0, fmt.Errorf("unknown event kind %q", s)
	}
}

// StepEvent is one observable unit of algorithmic progress.
//
// Comparisons and Swaps are the run's running totals at the moment of
// emission, including this event. An observer that receives an event can
// therefore never see a counter behind it, even if earlier events were
// coalesced away.
type StepEvent struct {
	Seq         int64     `json:"seq"`
	Kind        EventKind `json:"kind"`
	I           int       `json:"i"`
	J           int       `json:"j"`
	Comparisons uint64    `json:"comparisons"`
	Swaps       uint64    `json:"swaps"`
}

// Compare builds a compare event.
func Compare(i, j int) StepEvent {
	return StepEvent{Kind: EventCompare, I: i, J: j}
}

// Mutate builds a mutate event.
func Mutate(i, j int) StepEvent {
	return StepEvent{Kind: EventMutate, I: i, J: j}
}

// Done builds the terminal event.
func Done() StepEvent {
	return StepEvent{Kind: EventDone, I: NoIndex, J: NoIndex}
}

// String renders the event for logs and text traces.
func (e StepEvent) String() string {
	if e.Kind == EventDone {
		return fmt.Sprintf("#%d done (c=%d s=%d)", e.Seq, e.Comparisons, e.Swaps)
	}
	return fmt.Sprintf("#%d %s(%d,%d) (c=%d s=%d)", e.Seq, e.Kind, e.I, e.J, e.Comparisons, e.Swaps)
}
