package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/sortviz/internal/ir"
)

func TestFrame_Bars(t *testing.T) {
	v := ir.View{
		Values:      []int{2, 4, 1},
		Highlight:   [2]int{0, 2},
		Comparisons: 3,
		Swaps:       1,
		State:       ir.StateRunning,
	}

	got := Frame(v, 4)
	want := "running  comparisons=3 swaps=1\n" +
		"▓▓ <\n" +
		"████\n" +
		"▓ <\n"
	assert.Equal(t, want, got)
}

func TestFrame_ShowNumbers(t *testing.T) {
	v := ir.View{
		Values:      []int{5, 120},
		Highlight:   [2]int{ir.NoIndex, ir.NoIndex},
		State:       ir.StateCompleted,
		ShowNumbers: true,
	}

	lines := strings.Split(strings.TrimSuffix(Frame(v, 10), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "  5 █"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "120 ██████████"), lines[2])
}

func TestFrame_Empty(t *testing.T) {
	got := Frame(ir.View{State: ir.StateIdle}, 0)
	assert.Equal(t, "idle  comparisons=0 swaps=0\n", got)
}

func TestLive_CoalescesFrames(t *testing.T) {
	var buf bytes.Buffer
	view := ir.View{Values: []int{1, 2}, Highlight: [2]int{ir.NoIndex, ir.NoIndex}}
	l := NewLive(&buf, func() ir.View { return view }, 5, time.Hour)

	l.OnStart(ir.RunInfo{ID: "run-1", Algorithm: ir.AlgorithmHeap, Size: 2})
	for i := 0; i < 100; i++ {
		l.OnStep(ir.Compare(0, 1))
	}
	l.OnFinish(ir.Result{Outcome: ir.OutcomeCompleted})

	assert.Equal(t, 2, l.Frames(), "start and finish only")
	assert.Contains(t, buf.String(), "== Heap Sort on 2 elements (run run-1)")
	assert.Contains(t, buf.String(), "== completed in")
}

func TestLive_RedrawsAfterInterval(t *testing.T) {
	var buf bytes.Buffer
	view := ir.View{Values: []int{1}}
	l := NewLive(&buf, func() ir.View { return view }, 5, 0)

	l.OnStart(ir.RunInfo{Algorithm: ir.AlgorithmBubble})
	l.OnStep(ir.Compare(0, 0))
	l.OnStep(ir.Compare(0, 0))

	assert.Equal(t, 3, l.Frames())
}
