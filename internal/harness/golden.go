package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sortviz/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// It is serialized as canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	RunID        string
	Algorithm    string
	Input        []int
	Outcome      string
	Trace        []TraceEvent
}

// NewTraceSnapshot builds the snapshot of a finished scenario.
func NewTraceSnapshot(name string, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: name,
		RunID:        result.Run.ID,
		Algorithm:    result.Run.Algorithm.String(),
		Input:        result.Run.Input,
		Outcome:      string(result.Run.Outcome),
		Trace:        result.Trace,
	}
}

// toCanonicalMap converts the snapshot to the map shape ir.MarshalCanonical
// accepts.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"type": event.Type,
			"seq":  event.Seq,
		}
		if event.Type == TraceStep {
			eventMap["kind"] = event.Kind
			eventMap["comparisons"] = event.Comparisons
			eventMap["swaps"] = event.Swaps
			if event.Kind != ir.EventDone.String() {
				eventMap["i"] = event.I
				eventMap["j"] = event.J
			}
		} else {
			eventMap["action"] = event.Action
			if event.Value != 0 {
				eventMap["value"] = event.Value
			}
		}
		traceList[i] = eventMap
	}

	input := s.Input
	if input == nil {
		input = []int{}
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"run_id":        s.RunID,
		"algorithm":     s.Algorithm,
		"input":         input,
		"outcome":       s.Outcome,
		"trace":         traceList,
	}
}

// MarshalCanonical returns the canonical JSON of the snapshot.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot execute. A trace mismatch fails
// the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a result's trace against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := NewTraceSnapshot(scenarioName, result)
	traceJSON, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
