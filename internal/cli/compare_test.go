package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sortviz/internal/store"
)

func compareNames(entries []CompareEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Algorithm
	}
	return names
}

func TestCompareCommand_RanksAllAlgorithms(t *testing.T) {
	out, _, err := execute(t, "compare", "--input", "3,2,1", "--format", "json")
	require.NoError(t, err)

	var got CompareResult
	decodeResponse(t, out, &got)
	assert.Equal(t, 3, got.Size)
	assert.Equal(t, []int{3, 2, 1}, got.Input)
	require.Len(t, got.Entries, 6)
	assert.Equal(t,
		[]string{"heap", "merge", "selection", "bubble", "insertion", "quick"},
		compareNames(got.Entries))

	for _, e := range got.Entries {
		assert.Equal(t, "completed", e.Outcome, e.Algorithm)
	}
	assert.Equal(t, uint64(1), got.Entries[0].Comparisons)
	assert.Equal(t, uint64(4), got.Entries[0].Swaps)
	assert.Equal(t, uint64(2), got.Entries[1].Comparisons)
	assert.Equal(t, uint64(5), got.Entries[1].Swaps)
}

func TestCompareCommand_SelectedAlgorithms(t *testing.T) {
	out, _, err := execute(t, "compare", "quick", "merge", "quick", "--size", "30", "--seed", "4", "--parallel", "1", "--format", "json")
	require.NoError(t, err)

	var got CompareResult
	decodeResponse(t, out, &got)
	assert.Equal(t, 30, got.Size)
	require.Len(t, got.Entries, 2)
	assert.ElementsMatch(t, []string{"quick", "merge"}, compareNames(got.Entries))
	assert.LessOrEqual(t, got.Entries[0].Comparisons, got.Entries[1].Comparisons)
}

func TestCompareCommand_Text(t *testing.T) {
	out, _, err := execute(t, "compare", "bubble", "heap", "--input", "4,1,3,2")
	require.NoError(t, err)

	assert.Contains(t, out, "4 elements")
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "Bubble Sort")
	assert.Contains(t, out, "Heap Sort")
}

func TestCompareCommand_Faulted(t *testing.T) {
	out, _, err := execute(t, "compare", "bubble", "--input", "4,3,2,1", "--max-steps", "3", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var got CompareResult
	resp := decodeResponse(t, out, &got)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeFaulted, resp.Error.Code)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "faulted", got.Entries[0].Outcome)
	assert.NotEmpty(t, got.Entries[0].Error)
}

func TestCompareCommand_RecordsRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	_, _, err := execute(t, "compare", "merge", "heap", "--input", "2,3,1", "--db", dbPath, "--traces")
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, rec := range runs {
		assert.Equal(t, runs[0].InputHash, rec.InputHash)
		assert.NotEmpty(t, rec.TraceHash)
	}

	out, _, err := execute(t, "replay", "--db", dbPath, "--format", "json")
	require.NoError(t, err)
	var replayed ReplayResult
	decodeResponse(t, out, &replayed)
	assert.True(t, replayed.AllDeterministic)
}

func TestCompareCommand_InvalidAlgorithm(t *testing.T) {
	_, _, err := execute(t, "compare", "bogo")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
