package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sortviz/internal/arraygen"
	"github.com/roach88/sortviz/internal/config"
	"github.com/roach88/sortviz/internal/engine"
	"github.com/roach88/sortviz/internal/ir"
)

func newTestSession(t *testing.T, opts ...engine.Option) *Session {
	t.Helper()
	cfg := config.Default()
	cfg.Size = 12
	cfg.Seed = 7
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(cfg, logger, append([]engine.Option{engine.WithDelay(0)}, opts...)...)
	require.NoError(t, err)
	return s
}

func TestNew_InitialState(t *testing.T) {
	s := newTestSession(t)

	assert.Equal(t, Status{Message: "Ready to sort", Level: LevelReady}, s.Status())
	assert.Equal(t, 12, s.Size())
	assert.Equal(t, config.DefaultSpeed, s.Speed())

	v := s.View()
	assert.Len(t, v.Values, 12)
	assert.Equal(t, ir.StateIdle, v.State)
	for _, x := range v.Values {
		assert.GreaterOrEqual(t, x, 1)
		assert.LessOrEqual(t, x, arraygen.MaxValue)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Size = 3
	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestSession_SeededArraysRepeat(t *testing.T) {
	a := newTestSession(t)
	b := newTestSession(t)
	assert.Equal(t, a.View().Values, b.View().Values)
}

func TestSession_GenerateNewArray(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.GenerateNewArray())
	assert.Equal(t, "Array generated with 12 elements", s.Status().Message)
	assert.Equal(t, LevelSuccess, s.Status().Level)
}

func TestSession_Load(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Load([]int{3, 1, 2}))
	assert.Equal(t, []int{3, 1, 2}, s.View().Values)
	assert.Equal(t, "Array loaded with 3 elements", s.Status().Message)
}

func TestSession_RunToCompletion(t *testing.T) {
	s := newTestSession(t)

	_, err := s.Start(context.Background(), ir.AlgorithmQuick)
	require.NoError(t, err)

	res, err := s.Controller().Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ir.OutcomeCompleted, res.Outcome)
	assert.IsNonDecreasing(t, res.Output)

	st := s.Status()
	assert.Regexp(t, `^Sorting completed in \d+\.\d\d seconds$`, st.Message)
	assert.Equal(t, LevelSuccess, st.Level)
}

func TestSession_InstantRunKeepsFinalStatus(t *testing.T) {
	for _, values := range [][]int{{7}, {}} {
		s := newTestSession(t)
		require.NoError(t, s.Load(values))

		_, err := s.Start(context.Background(), ir.AlgorithmBubble)
		require.NoError(t, err)
		res, err := s.Controller().Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ir.OutcomeCompleted, res.Outcome)

		st := s.Status()
		assert.Regexp(t, `^Sorting completed in `, st.Message, "values %v", values)
		assert.Equal(t, LevelSuccess, st.Level)
	}
}

func TestSession_RejectedStartKeepsStatus(t *testing.T) {
	s := newTestSession(t, engine.WithDelay(time.Hour))
	_, err := s.Start(context.Background(), ir.AlgorithmBubble)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	_, err = s.TogglePause()
	require.NoError(t, err)

	_, err = s.Start(context.Background(), ir.AlgorithmQuick)
	assert.True(t, engine.IsAlreadyRunning(err))
	assert.Equal(t, Status{Message: "Sorting paused", Level: LevelBusy}, s.Status())
}

func TestSession_PauseResumeStop(t *testing.T) {
	s := newTestSession(t, engine.WithDelay(time.Hour))

	_, err := s.Start(context.Background(), ir.AlgorithmBubble)
	require.NoError(t, err)
	assert.Equal(t, "Sorting in progress...", s.Status().Message)

	state, err := s.TogglePause()
	require.NoError(t, err)
	assert.Equal(t, ir.StatePaused, state)
	assert.Equal(t, "Sorting paused", s.Status().Message)

	state, err = s.TogglePause()
	require.NoError(t, err)
	assert.Equal(t, ir.StateRunning, state)
	assert.Equal(t, "Sorting resumed", s.Status().Message)

	require.NoError(t, s.Stop())
	assert.Equal(t, Status{Message: "Sorting stopped", Level: LevelDanger}, s.Status())
	assert.Equal(t, ir.StateStopped, s.View().State)
}

func TestSession_ActiveRunGuards(t *testing.T) {
	s := newTestSession(t, engine.WithDelay(time.Hour))
	_, err := s.Start(context.Background(), ir.AlgorithmHeap)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	_, err = s.Start(context.Background(), ir.AlgorithmMerge)
	assert.True(t, engine.IsAlreadyRunning(err))

	assert.True(t, engine.IsAlreadyRunning(s.GenerateNewArray()))

	err = s.SetSize(20)
	assert.ErrorIs(t, err, engine.ErrAlreadyRunning)
	assert.Equal(t, 12, s.Size(), "size unchanged")

	// Speed applies mid-run.
	require.NoError(t, s.SetSpeed(100))
	assert.Equal(t, time.Millisecond, s.Controller().Delay())
}

func TestSession_StopWhileIdle(t *testing.T) {
	s := newTestSession(t)
	err := s.Stop()
	assert.True(t, engine.IsInvalidTransition(err))
	assert.Equal(t, "Ready to sort", s.Status().Message)
}

func TestSession_SetSize(t *testing.T) {
	s := newTestSession(t)

	require.NoError(t, s.SetSize(arraygen.MaxSize))
	assert.Len(t, s.View().Values, arraygen.MaxSize)
	assert.Equal(t, "Array generated with 200 elements", s.Status().Message)

	for _, bad := range []int{arraygen.MinSize - 1, arraygen.MaxSize + 1} {
		assert.Error(t, s.SetSize(bad))
	}
	assert.Equal(t, arraygen.MaxSize, s.Size())
}

func TestSession_SetSpeed(t *testing.T) {
	s := newTestSession(t)

	require.NoError(t, s.SetSpeed(1))
	assert.Equal(t, 100*time.Millisecond, s.Controller().Delay())
	assert.Equal(t, 1, s.Speed())

	assert.Error(t, s.SetSpeed(0))
	assert.Error(t, s.SetSpeed(101))
	assert.Equal(t, 1, s.Speed())
}

func TestSession_ToggleShowNumbers(t *testing.T) {
	s := newTestSession(t)
	assert.False(t, s.View().ShowNumbers)
	assert.True(t, s.ToggleShowNumbers())
	assert.True(t, s.View().ShowNumbers)
	assert.False(t, s.ToggleShowNumbers())
}

func TestSession_Dispatch(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)

	require.NoError(t, s.Dispatch(ctx, Command{Type: CommandSetSize, Value: 15}))
	require.NoError(t, s.Dispatch(ctx, Command{Type: CommandSetSpeed, Value: 100}))
	require.NoError(t, s.Dispatch(ctx, Command{Type: CommandToggleShowNumbers}))
	require.NoError(t, s.Dispatch(ctx, Command{Type: CommandGenerate}))
	require.NoError(t, s.Dispatch(ctx, Command{Type: CommandStart, Algorithm: ir.AlgorithmInsertion}))

	res, err := s.Controller().Wait(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Output, 15)
	assert.True(t, s.View().ShowNumbers)

	assert.True(t, engine.IsInvalidTransition(s.Dispatch(ctx, Command{Type: CommandTogglePause})))
	assert.EqualError(t, s.Dispatch(ctx, Command{Type: "shuffle"}), `unknown command "shuffle"`)
}
