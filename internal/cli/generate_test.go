package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCommand_SeedIsRepeatable(t *testing.T) {
	out1, _, err := execute(t, "generate", "--size", "12", "--seed", "5")
	require.NoError(t, err)
	out2, _, err := execute(t, "generate", "--size", "12", "--seed", "5")
	require.NoError(t, err)

	assert.Equal(t, out1, out2)
	values, err := parseValues(strings.TrimSpace(out1))
	require.NoError(t, err)
	assert.Len(t, values, 12)
	for _, v := range values {
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 500)
	}
}

func TestGenerateCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "generate", "--size", "10", "--pattern", "sorted", "--seed", "1", "--format", "json")
	require.NoError(t, err)

	var got GenerateResult
	decodeResponse(t, out, &got)
	assert.Equal(t, 10, got.Size)
	assert.Equal(t, "sorted", got.Pattern)
	assert.Len(t, got.Values, 10)
	assert.IsNonDecreasing(t, got.Values)
	assert.NotEmpty(t, got.InputHash)
}

func TestGenerateCommand_RenderAndVerbose(t *testing.T) {
	out, _, err := execute(t, "generate", "--size", "10", "--seed", "2", "--render", "--width", "5", "-v")
	require.NoError(t, err)

	assert.Contains(t, out, "idle  comparisons=0 swaps=0")
	assert.Contains(t, out, "█")
	assert.Contains(t, out, "# 10 elements, pattern random")
}

func TestGenerateCommand_InvalidSize(t *testing.T) {
	_, _, err := execute(t, "generate", "--size", "1000")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
