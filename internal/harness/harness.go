package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/roach88/sortviz/internal/config"
	"github.com/roach88/sortviz/internal/engine"
	"github.com/roach88/sortviz/internal/ir"
	"github.com/roach88/sortviz/internal/store"
	"github.com/roach88/sortviz/internal/testutil"
)

// ClockTick is how far the harness clock advances per read.
const ClockTick = time.Millisecond

// holdTimeout bounds the wait for a pause to take hold.
const holdTimeout = 5 * time.Second

// Harness is the execution state of one scenario run.
type Harness struct {
	ctl      *engine.Controller
	store    *store.Store
	recorder *store.Recorder
	logger   *slog.Logger

	commands map[int64][]Command
	pauses   chan Command

	mu    sync.Mutex
	trace []TraceEvent
	last  int64
	errs  []string
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database with deterministic
// helpers. Execution flow:
//  1. Create the store and a controller in synchronous delivery mode
//  2. Start the run, applying commands as their positions are reached
//  3. Wait for the run, then check expectations and assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a context that bounds the run.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	alg, err := ir.ParseAlgorithm(scenario.Algorithm)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Harness{
		store:    st,
		recorder: store.NewRecorder(ctx, st, true, logger),
		logger:   logger,
		commands: make(map[int64][]Command),
		pauses:   make(chan Command, len(scenario.Commands)),
	}
	for _, cmd := range scenario.Commands {
		if cmd.Action != ActionResume {
			h.commands[cmd.At] = append(h.commands[cmd.At], cmd)
		}
	}

	events := &testutil.Recorder{OnEvent: h.onEvent}
	opts := []engine.Option{
		engine.WithDelay(0),
		engine.WithSyncDelivery(),
		engine.WithLogger(logger),
		engine.WithClock(testutil.NewDeterministicClock(ClockTick)),
		engine.WithRunIDGenerator(testutil.FixedRunID(scenario.RunID)),
		engine.WithObserver(events),
		engine.WithObserver(h.recorder),
	}
	if scenario.MaxSteps > 0 {
		opts = append(opts, engine.WithMaxSteps(scenario.MaxSteps))
	}
	h.ctl = engine.New(scenario.Input, opts...)

	if _, err := h.ctl.Start(ctx, alg); err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	run, err := h.await(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for run: %w", err)
	}
	if err := h.recorder.Err(); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	result := NewResult()
	result.Run = run
	h.mu.Lock()
	result.Trace = h.trace
	for _, e := range h.errs {
		result.AddError(e)
	}
	h.mu.Unlock()

	rec, err := st.ReadRun(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored run: %w", err)
	}
	result.State = recordFields(rec, h.ctl.State())

	checkInvariants(scenario.Input, run, result)
	if scenario.Expect != nil {
		checkExpect(scenario.Expect, run, result)
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"outcome", string(run.Outcome),
		"pass", result.Pass,
	)
	return result, nil
}

// onEvent runs on the driver path after each delivered event.
func (h *Harness) onEvent(e ir.StepEvent) {
	h.mu.Lock()
	h.trace = append(h.trace, stepTrace(e))
	h.last = e.Seq
	cmds := h.commands[e.Seq]
	h.mu.Unlock()

	for _, cmd := range cmds {
		h.apply(cmd, e.Seq)
	}
}

func (h *Harness) apply(cmd Command, seq int64) {
	var err error
	switch cmd.Action {
	case ActionPause:
		err = h.ctl.Pause()
	case ActionStop:
		err = h.ctl.RequestStop()
	case ActionSpeed:
		h.ctl.SetDelay(config.DelayForSpeed(cmd.Value))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.errs = append(h.errs, fmt.Sprintf("%s at %d: %v", cmd.Action, seq, err))
		return
	}
	h.trace = append(h.trace, commandTrace(cmd, seq))
	if cmd.Action == ActionPause {
		h.pauses <- cmd
	}
}

// await resumes each pause once it has taken hold and returns the run
// result.
func (h *Harness) await(ctx context.Context) (ir.Result, error) {
	finished := make(chan struct{})
	var (
		res     ir.Result
		waitErr error
	)
	go func() {
		defer close(finished)
		res, waitErr = h.ctl.Wait(ctx)
	}()

	for {
		select {
		case cmd := <-h.pauses:
			h.resume(ctx, cmd)
		case <-finished:
			// A pause that never took hold is reported, not resumed.
			for {
				select {
				case cmd := <-h.pauses:
					h.addError(fmt.Sprintf("pause at %d: run finished before the pause took hold", cmd.At))
				default:
					return res, waitErr
				}
			}
		}
	}
}

func (h *Harness) resume(ctx context.Context, pause Command) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(holdTimeout)

	for !h.ctl.Held() {
		if !h.ctl.State().Active() {
			h.addError(fmt.Sprintf("pause at %d: run finished before the pause took hold", pause.At))
			return
		}
		select {
		case <-ticker.C:
		case <-deadline:
			h.addError(fmt.Sprintf("pause at %d: driver did not park within %s", pause.At, holdTimeout))
			_ = h.ctl.Resume()
			return
		case <-ctx.Done():
			_ = h.ctl.RequestStop()
			return
		}
	}

	h.mu.Lock()
	h.trace = append(h.trace, commandTrace(Command{Action: ActionResume}, h.last))
	h.mu.Unlock()

	if err := h.ctl.Resume(); err != nil {
		h.addError(fmt.Sprintf("resume after %d: %v", pause.At, err))
	}
}

func (h *Harness) addError(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, msg)
}

// checkInvariants verifies what must hold for every run: the output is a
// permutation of the input, sorted when the run completed, and the counters
// of the last delivered event match the result.
func checkInvariants(input []int, run ir.Result, result *Result) {
	want := slices.Clone(input)
	got := slices.Clone(run.Output)
	slices.Sort(want)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		result.AddError(fmt.Sprintf("output %v is not a permutation of input %v", run.Output, input))
	}
	if run.Outcome == ir.OutcomeCompleted && !slices.IsSorted(run.Output) {
		result.AddError(fmt.Sprintf("completed run output %v is not sorted", run.Output))
	}

	if n := int64(result.StepCount()); n != run.Events {
		result.AddError(fmt.Sprintf("delivered %d events, result reports %d", n, run.Events))
	}
	for i := len(result.Trace) - 1; i >= 0; i-- {
		e := result.Trace[i]
		if e.Type != TraceStep {
			continue
		}
		if e.Comparisons != run.Stats.Comparisons || e.Swaps != run.Stats.Swaps {
			result.AddError(fmt.Sprintf("last event counters (%d, %d) differ from result (%d, %d)",
				e.Comparisons, e.Swaps, run.Stats.Comparisons, run.Stats.Swaps))
		}
		break
	}
}

func checkExpect(exp *ExpectClause, run ir.Result, result *Result) {
	if string(run.Outcome) != exp.Outcome {
		result.AddError(fmt.Sprintf("expected outcome %s, got %s (err: %v)", exp.Outcome, run.Outcome, run.Err))
	}
	if exp.Output != nil && !slices.Equal(exp.Output, run.Output) {
		result.AddError(fmt.Sprintf("expected output %v, got %v", exp.Output, run.Output))
	}
	if exp.Comparisons != nil && *exp.Comparisons != run.Stats.Comparisons {
		result.AddError(fmt.Sprintf("expected %d comparisons, got %d", *exp.Comparisons, run.Stats.Comparisons))
	}
	if exp.Swaps != nil && *exp.Swaps != run.Stats.Swaps {
		result.AddError(fmt.Sprintf("expected %d swaps, got %d", *exp.Swaps, run.Stats.Swaps))
	}
	if exp.Events != nil && *exp.Events != run.Events {
		result.AddError(fmt.Sprintf("expected %d events, got %d", *exp.Events, run.Events))
	}
}

// recordFields flattens a stored run for final_state assertions.
func recordFields(rec store.RunRecord, state ir.RunState) map[string]any {
	output := make([]any, len(rec.Output))
	for i, v := range rec.Output {
		output[i] = int64(v)
	}
	return map[string]any{
		"id":          rec.ID,
		"algorithm":   rec.Algorithm.String(),
		"size":        int64(rec.Size),
		"outcome":     string(rec.Outcome),
		"comparisons": int64(rec.Comparisons),
		"swaps":       int64(rec.Swaps),
		"events":      rec.Events,
		"dropped":     rec.Dropped,
		"output":      output,
		"input_hash":  rec.InputHash,
		"trace_hash":  rec.TraceHash,
		"error":       rec.Error,
		"state":       state.String(),
	}
}
