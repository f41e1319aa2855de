package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sortviz/internal/ir"
)

func u64(v uint64) *uint64 { return &v }
func i64(v int64) *int64   { return &v }

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Two elements, one swap",
		Algorithm:   "bubble",
		Input:       []int{2, 1},
		Expect: &ExpectClause{
			Outcome:     "completed",
			Output:      []int{1, 2},
			Comparisons: u64(1),
			Swaps:       u64(1),
			Events:      i64(3),
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Trace, 3)
	assert.Equal(t, "compare 0 1", result.Trace[0].Label())
	assert.Equal(t, "mutate 0 1", result.Trace[1].Label())
	assert.Equal(t, "done", result.Trace[2].Label())

	assert.Equal(t, "test-run", result.Run.ID)
	assert.Equal(t, ClockTick, result.Run.Stats.Elapsed, "stopwatch reads the clock twice")
	assert.Equal(t, "completed", result.State["state"])
	assert.Equal(t, ir.InputHash([]int{2, 1}), result.State["input_hash"])
	assert.NotEmpty(t, result.State["trace_hash"])
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "Wrong expectations are reported",
		Algorithm:   "selection",
		Input:       []int{3, 1, 2},
		Expect: &ExpectClause{
			Outcome:     "cancelled",
			Output:      []int{3, 2, 1},
			Comparisons: u64(99),
			Swaps:       u64(99),
			Events:      i64(99),
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 5)
}

func TestRun_TraceIsDeterministic(t *testing.T) {
	for _, alg := range ir.Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			scenario := &Scenario{
				Name:        "determinism",
				Description: "Same input, same trace",
				Algorithm:   alg.String(),
				Input:       []int{9, 3, 7, 1, 8, 2, 2, 6},
				Commands: []Command{
					{At: 4, Action: ActionPause},
					{Action: ActionResume},
					{At: 9, Action: ActionSpeed, Value: 100},
				},
				Expect: &ExpectClause{Outcome: "completed", Output: []int{1, 2, 2, 3, 6, 7, 8, 9}},
			}

			first, err := Run(scenario)
			require.NoError(t, err)
			second, err := Run(scenario)
			require.NoError(t, err)

			assert.True(t, first.Pass, "errors: %v", first.Errors)
			assert.Equal(t, first.Trace, second.Trace)
			assert.Equal(t, first.State["trace_hash"], second.State["trace_hash"])

			a := NewTraceSnapshot("determinism", first)
			b := NewTraceSnapshot("determinism", second)
			aj, err := a.MarshalCanonical()
			require.NoError(t, err)
			bj, err := b.MarshalCanonical()
			require.NoError(t, err)
			assert.Equal(t, aj, bj)
		})
	}
}

func TestRun_PauseAtLastEventNeverHolds(t *testing.T) {
	// Bubble on [2, 1] emits compare, mutate, done with no checkpoint after
	// the compare, so a pause there cannot park the driver.
	scenario := &Scenario{
		Name:        "late_pause",
		Description: "Pause after the final checkpoint",
		Algorithm:   "bubble",
		Input:       []int{2, 1},
		Commands:    []Command{{At: 1, Action: ActionPause}, {Action: ActionResume}},
		Expect:      &ExpectClause{Outcome: "completed"},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "run finished before the pause took hold")
}

func TestRun_FaultedRunStored(t *testing.T) {
	scenario := &Scenario{
		Name:        "budget",
		Description: "Budget fault",
		Algorithm:   "bubble",
		Input:       []int{4, 3, 2, 1},
		MaxSteps:    3,
		Expect:      &ExpectClause{Outcome: "faulted"},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "idle", result.State["state"])
	assert.Contains(t, result.State["error"], "exceeded step budget")
}

func TestRun_UnknownAlgorithm(t *testing.T) {
	_, err := Run(&Scenario{Name: "x", Algorithm: "bogo"})
	assert.Error(t, err)
}

func TestRunSuite_Testdata(t *testing.T) {
	paths, err := DiscoverScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.Len(t, paths, 5)

	result := RunSuite(context.Background(), paths)
	assert.Equal(t, 5, result.TotalScenarios)
	assert.Equal(t, 5, result.Passed, "failures: %+v", result.Failures)
	assert.Zero(t, result.Failed)
}

func TestRunSuite_CountsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("name: [\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte(`
name: wrong
description: "Fails its expectation"
algorithm: heap
input: [1, 2]
expect:
  outcome: cancelled
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	paths, err := DiscoverScenarios(dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	result := RunSuite(context.Background(), paths)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Failures, 2)
	assert.Contains(t, result.Failures[0].Errors[0], "failed to load scenario")
	assert.Equal(t, "wrong", result.Failures[1].ScenarioName)
}

func TestDiscoverScenarios_Missing(t *testing.T) {
	_, err := DiscoverScenarios(filepath.Join(t.TempDir(), "nope"))
	var nf *ScenarioNotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestDiscoverScenarios_File(t *testing.T) {
	paths, err := DiscoverScenarios("testdata/scenarios/empty_input.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"testdata/scenarios/empty_input.yaml"}, paths)
}
