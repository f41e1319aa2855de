package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sortviz/internal/config"
	"github.com/roach88/sortviz/internal/ir"
)

// Scenario defines a conformance test scenario: one run of one algorithm
// over a fixed input, with optional control commands, checked against
// expectations and trace assertions.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Algorithm is the algorithm name, as accepted by ir.ParseAlgorithm.
	Algorithm string `yaml:"algorithm"`

	// Input is the array to sort. Empty and single-element inputs are valid.
	Input []int `yaml:"input"`

	// MaxSteps overrides the step budget. Zero means the default.
	MaxSteps int64 `yaml:"max_steps,omitempty"`

	// RunID is a fixed run ID. If empty, defaults to "test-run".
	RunID string `yaml:"run_id,omitempty"`

	// Commands are applied at event positions during the run.
	Commands []Command `yaml:"commands,omitempty"`

	// Expect checks the run result. If nil, only assertions are checked.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate the trace and the stored run.
	Assertions []Assertion `yaml:"assertions"`
}

// Command actions.
const (
	ActionPause  = "pause"
	ActionResume = "resume"
	ActionStop   = "stop"
	ActionSpeed  = "speed"
)

// Command is a control action applied during the run.
type Command struct {
	// At is the event seq after which the command applies. Resume takes
	// no position: it is applied once the preceding pause has taken hold.
	At int64 `yaml:"at,omitempty"`

	// Action is one of pause, resume, stop, speed.
	Action string `yaml:"action"`

	// Value is the speed (1..100) for the speed action.
	Value int `yaml:"value,omitempty"`
}

// ExpectClause specifies the expected run result. Nil counters are not
// checked.
type ExpectClause struct {
	Outcome     string  `yaml:"outcome"`
	Output      []int   `yaml:"output,omitempty"`
	Comparisons *uint64 `yaml:"comparisons,omitempty"`
	Swaps       *uint64 `yaml:"swaps,omitempty"`
	Events      *int64  `yaml:"events,omitempty"`
}

// Assertion validates the trace or the stored run.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count, final_state.
	Type string `yaml:"type"`

	// Step is a trace line pattern (trace_contains, trace_count).
	Step string `yaml:"step,omitempty"`

	// Steps are patterns in expected order (trace_order).
	Steps []string `yaml:"steps,omitempty"`

	// Count is the expected number of matches (trace_count).
	Count int `yaml:"count,omitempty"`

	// Expect holds expected stored fields (final_state). Subset match.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict fields catch typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if _, err := ir.ParseAlgorithm(s.Algorithm); err != nil {
		return fmt.Errorf("algorithm: %w", err)
	}
	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}
	if len(s.Assertions) == 0 && s.Expect == nil {
		return fmt.Errorf("expect or a non-empty assertions list is required")
	}

	if err := validateCommands(s.Commands); err != nil {
		return err
	}

	if s.Expect != nil {
		if _, err := ir.ParseOutcome(s.Expect.Outcome); err != nil {
			return fmt.Errorf("expect.outcome: %w", err)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateCommands(cmds []Command) error {
	var last int64
	for i, cmd := range cmds {
		switch cmd.Action {
		case ActionPause, ActionStop, ActionSpeed:
			if cmd.At < 1 {
				return fmt.Errorf("commands[%d]: at must be >= 1 for %s", i, cmd.Action)
			}
			if cmd.At < last {
				return fmt.Errorf("commands[%d]: at %d is before the previous command", i, cmd.At)
			}
			last = cmd.At
		case ActionResume:
			if i == 0 || cmds[i-1].Action != ActionPause {
				return fmt.Errorf("commands[%d]: resume must directly follow pause", i)
			}
			if cmd.At != 0 {
				return fmt.Errorf("commands[%d]: resume takes no at", i)
			}
		default:
			return fmt.Errorf("commands[%d]: unknown action %q", i, cmd.Action)
		}

		if cmd.Action == ActionSpeed && (cmd.Value < config.MinSpeed || cmd.Value > config.MaxSpeed) {
			return fmt.Errorf("commands[%d]: speed must be in [%d, %d]", i, config.MinSpeed, config.MaxSpeed)
		}
		if cmd.Action == ActionPause && (i+1 == len(cmds) || cmds[i+1].Action != ActionResume) {
			return fmt.Errorf("commands[%d]: pause must be followed by resume", i)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Step == "" {
			return fmt.Errorf("assertions[%d]: step is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Steps) == 0 {
			return fmt.Errorf("assertions[%d]: steps list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Step == "" {
			return fmt.Errorf("assertions[%d]: step is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
