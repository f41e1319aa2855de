package cli

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sortviz/internal/engine"
	"github.com/roach88/sortviz/internal/ir"
	"github.com/roach88/sortviz/internal/store"
)

// seedRun records one run of alg on input under id. stopAt > 0 stops the
// run after that event.
func seedRun(t *testing.T, st *store.Store, id string, alg ir.Algorithm, input []int, stopAt int64, opts ...engine.Option) ir.Result {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := store.NewRecorder(context.Background(), st, true, logger)

	var ctl *engine.Controller
	base := []engine.Option{
		engine.WithDelay(0),
		engine.WithSyncDelivery(),
		engine.WithLogger(logger),
		engine.WithRunIDGenerator(engine.NewFixedGenerator(id)),
		engine.WithObserver(recorder),
		engine.WithObserver(engine.ObserverFuncs{
			Step: func(e ir.StepEvent) {
				if e.Seq == stopAt {
					_ = ctl.RequestStop()
				}
			},
		}),
	}
	ctl = engine.New(input, append(base, opts...)...)

	_, err := ctl.Start(context.Background(), alg)
	require.NoError(t, err)
	res, err := ctl.Wait(context.Background())
	require.NoError(t, err)
	require.NoError(t, recorder.Err())
	return res
}

// seedDatabase creates a database with a completed, a cancelled, and a
// faulted run.
func seedDatabase(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	seedRun(t, st, "run-a", ir.AlgorithmBubble, []int{3, 2, 1}, 0)
	seedRun(t, st, "run-b", ir.AlgorithmSelection, []int{5, 1, 4, 2, 3}, 5)
	seedRun(t, st, "run-c", ir.AlgorithmBubble, []int{4, 3, 2, 1}, 0, engine.WithMaxSteps(3))
	return dbPath
}

func TestHistoryCommand_ListsNewestFirst(t *testing.T) {
	dbPath := seedDatabase(t)

	out, _, err := execute(t, "history", "--db", dbPath, "--format", "json")
	require.NoError(t, err)

	var got HistoryResult
	decodeResponse(t, out, &got)
	require.Len(t, got.Runs, 3)
	assert.Equal(t, "run-c", got.Runs[0].ID)
	assert.Equal(t, "faulted", got.Runs[0].Outcome)
	assert.Equal(t, "run-b", got.Runs[1].ID)
	assert.Equal(t, "cancelled", got.Runs[1].Outcome)
	assert.Equal(t, int64(5), got.Runs[1].Events)
	assert.Equal(t, "run-a", got.Runs[2].ID)
	assert.Equal(t, uint64(3), got.Runs[2].Comparisons)
	assert.NotEmpty(t, got.Runs[2].TraceHash)
}

func TestHistoryCommand_Filters(t *testing.T) {
	dbPath := seedDatabase(t)

	out, _, err := execute(t, "history", "--db", dbPath, "--algorithm", "bubble", "--outcome", "completed", "--format", "json")
	require.NoError(t, err)

	var got HistoryResult
	decodeResponse(t, out, &got)
	require.Len(t, got.Runs, 1)
	assert.Equal(t, "run-a", got.Runs[0].ID)

	out, _, err = execute(t, "history", "--db", dbPath, "--limit", "1", "--format", "json")
	require.NoError(t, err)
	got = HistoryResult{}
	decodeResponse(t, out, &got)
	require.Len(t, got.Runs, 1)
	assert.Equal(t, "run-c", got.Runs[0].ID)
}

func TestHistoryCommand_Text(t *testing.T) {
	dbPath := seedDatabase(t)

	out, _, err := execute(t, "history", "--db", dbPath, "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "ALGORITHM")
	assert.Contains(t, out, "run-a")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "TRACE")
}

func TestHistoryCommand_Stats(t *testing.T) {
	dbPath := seedDatabase(t)

	out, _, err := execute(t, "history", "--db", dbPath, "--stats", "--format", "json")
	require.NoError(t, err)

	var got HistoryResult
	decodeResponse(t, out, &got)
	require.NotEmpty(t, got.Algorithms)

	byName := map[string]AlgorithmSummary{}
	for _, a := range got.Algorithms {
		byName[a.Algorithm] = a
	}
	bubble := byName["bubble"]
	assert.Equal(t, 1, bubble.Completed)
	assert.Equal(t, 1, bubble.Faulted)
	assert.InDelta(t, 3.0, bubble.AvgComparisons, 0.001)
	assert.Equal(t, 1, byName["selection"].Cancelled)
}

func TestHistoryCommand_DatabaseInfo(t *testing.T) {
	dbPath := seedDatabase(t)

	out, _, err := execute(t, "history", "--db", dbPath, "--format", "json")
	require.NoError(t, err)

	var got HistoryResult
	decodeResponse(t, out, &got)
	assert.Equal(t, dbPath, got.Database.Path)
	assert.Equal(t, store.SchemaVersion, got.Database.SchemaVersion)
	assert.Equal(t, 3, got.Database.Runs)
	// run-a: 7 events, run-b stopped after 5, run-c faulted at its 3-step budget.
	assert.Equal(t, 15, got.Database.Events)

	out, _, err = execute(t, "history", "--db", dbPath, "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "Database: "+dbPath+" (schema v")
	assert.Contains(t, out, "3 runs, 15 trace events)")
}

func TestHistoryCommand_Empty(t *testing.T) {
	out, _, err := execute(t, "history", "--db", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestHistoryCommand_InvalidFilters(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	_, _, err := execute(t, "history", "--db", dbPath, "--algorithm", "bogo")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "history", "--db", dbPath, "--outcome", "exploded")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHistoryCommand_RequiresDB(t *testing.T) {
	_, _, err := execute(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
