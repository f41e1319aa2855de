package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputHash_Stable(t *testing.T) {
	a := InputHash([]int{1, 2, 3})
	b := InputHash([]int{1, 2, 3})
	c := InputHash([]int{3, 2, 1})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestTraceHash_OrderSensitive(t *testing.T) {
	first := []StepEvent{Compare(0, 1), Mutate(0, 1)}
	second := []StepEvent{Mutate(0, 1), Compare(0, 1)}

	h1, err := TraceHash(first)
	require.NoError(t, err)
	h2, err := TraceHash(second)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestTraceHash_DomainSeparated(t *testing.T) {
	// an empty trace and an empty input encode to different bytes, but the
	// domain prefix keeps even identical payloads apart
	h, err := TraceHash(nil)
	require.NoError(t, err)
	assert.NotEqual(t, InputHash(nil), h)
}
