package arraygen

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_BoundsAndSize(t *testing.T) {
	values, err := Generate(DefaultSize, MaxValue)
	require.NoError(t, err)

	assert.Len(t, values, DefaultSize)
	for _, v := range values {
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, MaxValue)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a, err := New(42).Generate(100, 500)
	require.NoError(t, err)
	b, err := New(42).Generate(100, 500)
	require.NoError(t, err)
	c, err := New(43).Generate(100, 500)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerator_Patterns(t *testing.T) {
	g := New(7)

	sorted, err := g.Pattern(PatternSorted, 50, 500)
	require.NoError(t, err)
	assert.True(t, slices.IsSorted(sorted))

	reversed, err := g.Pattern(PatternReversed, 50, 500)
	require.NoError(t, err)
	back := slices.Clone(reversed)
	slices.Reverse(back)
	assert.True(t, slices.IsSorted(back))

	few, err := g.Pattern(PatternFewUnique, 100, 500)
	require.NoError(t, err)
	distinct := slices.Compact(slices.Sorted(slices.Values(few)))
	assert.LessOrEqual(t, len(distinct), 4)

	near, err := g.Pattern(PatternNearSorted, 50, 500)
	require.NoError(t, err)
	assert.Len(t, near, 50)
}

func TestGenerator_InvalidArguments(t *testing.T) {
	g := New(1)

	_, err := g.Generate(-1, 10)
	assert.Error(t, err)

	_, err = g.Generate(10, 0)
	assert.Error(t, err)

	_, err = g.Pattern(Pattern("zigzag"), 10, 10)
	assert.Error(t, err)
}

func TestGenerator_EmptyAndSmallValueRange(t *testing.T) {
	g := New(1)

	empty, err := g.Generate(0, 500)
	require.NoError(t, err)
	assert.Empty(t, empty)

	ones, err := g.Pattern(PatternFewUnique, 20, 1)
	require.NoError(t, err)
	for _, v := range ones {
		assert.Equal(t, 1, v)
	}
}

func TestParsePattern(t *testing.T) {
	tests := []struct {
		in   string
		want Pattern
	}{
		{"", PatternRandom},
		{"random", PatternRandom},
		{"Sorted", PatternSorted},
		{" reversed ", PatternReversed},
		{"few-unique", PatternFewUnique},
		{"near-sorted", PatternNearSorted},
	}
	for _, tt := range tests {
		got, err := ParsePattern(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParsePattern("spiral")
	assert.Error(t, err)
}
