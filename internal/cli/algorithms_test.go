package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgorithmsCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "algorithms", "--size", "10", "--format", "json")
	require.NoError(t, err)

	var got AlgorithmsResult
	decodeResponse(t, out, &got)
	assert.Equal(t, 10, got.Size)
	require.Len(t, got.Algorithms, 6)

	names := make([]string, len(got.Algorithms))
	for i, a := range got.Algorithms {
		names[i] = a.Name
	}
	assert.Equal(t, []string{"bubble", "selection", "insertion", "merge", "quick", "heap"}, names)

	bubble := got.Algorithms[0]
	assert.Equal(t, "Bubble Sort", bubble.Title)
	assert.InDelta(t, 45.0, bubble.Theoretical, 0.001)
	assert.True(t, got.Algorithms[3].Stable)
	assert.InDelta(t, 33.22, got.Algorithms[3].Theoretical, 0.01)
}

func TestAlgorithmsCommand_Text(t *testing.T) {
	out, _, err := execute(t, "algorithms")
	require.NoError(t, err)

	assert.Contains(t, out, "COMPARISONS (n=50)")
	assert.Contains(t, out, "Heap Sort")
	assert.Contains(t, out, "1225")
}

func TestAlgorithmsCommand_NegativeSize(t *testing.T) {
	_, _, err := execute(t, "algorithms", "--size", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
