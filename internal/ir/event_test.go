package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventKind_RoundTrip(t *testing.T) {
	for _, k := range []EventKind{EventCompare, EventMutate, EventDone} {
		got, err := ParseEventKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseEventKind("swap")
	assert.Error(t, err)
}

func TestStepEvent_String(t *testing.T) {
	e := StepEvent{Seq: 3, Kind: EventMutate, I: 1, J: 2, Comparisons: 2, Swaps: 1}
	assert.Equal(t, "#3 mutate(1,2) (c=2 s=1)", e.String())

	d := Done()
	assert.Equal(t, NoIndex, d.I)
	assert.Equal(t, "#0 done (c=0 s=0)", d.String())
}

func TestRunState_Active(t *testing.T) {
	assert.True(t, StateRunning.Active())
	assert.True(t, StatePaused.Active())
	assert.False(t, StateIdle.Active())
	assert.False(t, StateStopped.Active())
	assert.False(t, StateCompleted.Active())
}

func TestView_Highlighted(t *testing.T) {
	v := View{Highlight: [2]int{2, 5}}
	assert.True(t, v.Highlighted(2))
	assert.True(t, v.Highlighted(5))
	assert.False(t, v.Highlighted(3))

	cleared := View{Highlight: [2]int{NoIndex, NoIndex}}
	assert.False(t, cleared.Highlighted(NoIndex))
}
