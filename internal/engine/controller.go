package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/sortviz/internal/ir"
)

// Controller owns the execution lifecycle of one visualizer instance: its
// ArrayState, its RunState and at most one active run.
//
// Thread-safety model:
//   - every exported method is safe from any goroutine
//   - the driver runs on its own goroutine and is the only writer of the
//     array while the state is Running or Paused
//   - observers are called from the run's goroutines, never under the lock
//
// INVARIANTS:
//   - at most one driver path exists at any time
//   - a new run never starts before the previous path has fully exited
//   - StepEvent sequence numbers within a run are strictly increasing
type Controller struct {
	mu    sync.Mutex
	state ir.RunState
	array *ArrayState
	delay time.Duration
	run   *activeRun
	last  *ir.Result

	observers    Observers
	ids          RunIDGenerator
	clock        Clock
	logger       *slog.Logger
	queueCap     int
	syncDelivery bool
	stepLimit    int64 // <0 derives the limit from the input size
}

// activeRun is the bookkeeping of one launched driver path.
type activeRun struct {
	info ir.RunInfo
	ctl  *Control
	done chan struct{} // closed after OnFinish has returned
}

// Option configures a Controller.
type Option func(*Controller)

// WithDelay sets the initial per-step delay.
func WithDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.delay = clampDelay(d)
	}
}

// WithObserver adds an observer to every run.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, o)
	}
}

// WithRunIDGenerator replaces the UUIDv7 run ID generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(c *Controller) {
		c.ids = g
	}
}

// WithClock replaces the wall clock used for elapsed time.
func WithClock(clk Clock) Option {
	return func(c *Controller) {
		c.clock = clk
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithQueueCapacity bounds the event queue between the driver and the
// observers. When full, the oldest pending event is dropped.
//
// Default: 0 (unbounded).
func WithQueueCapacity(n int) Option {
	return func(c *Controller) {
		c.queueCap = max(n, 0)
	}
}

// WithSyncDelivery calls OnStep directly on the driver path instead of
// through the relay queue. A slow observer then slows the run, and no event
// is ever dropped. Tests and trace recording use it.
func WithSyncDelivery() Option {
	return func(c *Controller) {
		c.syncDelivery = true
	}
}

// WithMaxSteps sets the step budget per run. Zero disables it.
//
// Default: DefaultStepLimit of the input size.
func WithMaxSteps(n int64) Option {
	return func(c *Controller) {
		c.stepLimit = max(n, 0)
	}
}

// New creates an Idle controller that owns a copy of values.
func New(values []int, opts ...Option) *Controller {
	c := &Controller{
		state:     ir.StateIdle,
		array:     NewArrayState(values),
		ids:       UUIDv7Generator{},
		clock:     SystemClock{},
		logger:    slog.Default(),
		stepLimit: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the driver of alg against the current array and returns
// the run ID.
//
// Fails with ErrAlreadyRunning while a run is Running or Paused. If the
// previous run was stopped and its path is still unwinding, Start waits for
// it to exit first. Cancelling ctx stops the run.
func (c *Controller) Start(ctx context.Context, alg ir.Algorithm) (string, error) {
	driver, err := DriverFor(alg)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	for c.run != nil && !c.state.Active() {
		// Previous path is finishing: wait for it outside the lock.
		done := c.run.done
		c.mu.Unlock()
		<-done
		c.mu.Lock()
	}
	if c.state.Active() {
		runID, state := c.run.info.ID, c.state
		c.mu.Unlock()
		return "", newAlreadyRunningError(runID, state)
	}

	c.array.reset()
	input := c.array.Snapshot()
	limit := c.stepLimit
	if limit < 0 {
		limit = DefaultStepLimit(len(input))
	}

	run := &activeRun{
		info: ir.RunInfo{
			ID:        c.ids.Generate(),
			Algorithm: alg,
			Size:      len(input),
			Input:     input,
		},
		ctl:  NewControl(c.delay),
		done: make(chan struct{}),
	}
	c.run = run
	c.state = ir.StateRunning
	observers := append(Observers(nil), c.observers...)
	c.mu.Unlock()

	c.logger.Info("run started",
		"run_id", run.info.ID,
		"algorithm", alg.String(),
		"size", run.info.Size,
	)

	stopOnCancel := context.AfterFunc(ctx, run.ctl.Stop)
	go func() {
		defer stopOnCancel()
		c.execute(run, driver, NewStepBudget(limit), observers)
	}()

	return run.info.ID, nil
}

// execute is the body of one run's execution path.
func (c *Controller) execute(run *activeRun, driver Driver, budget *StepBudget, obs Observers) {
	watch := startStopwatch(c.clock)
	obs.OnStart(run.info)

	var (
		emit  func(ir.StepEvent)
		queue *eventQueue
		relay sync.WaitGroup
	)
	if c.syncDelivery {
		emit = obs.OnStep
	} else {
		queue = newEventQueue(c.queueCap)
		emit = func(e ir.StepEvent) { queue.Enqueue(e) }
		relay.Add(1)
		go func() {
			defer relay.Done()
			queue.drain(obs.OnStep)
		}()
	}

	stepper := newStepper(run.info.ID, c.array, run.ctl, budget, emit)
	err := runDriver(driver, stepper)
	if err == nil {
		stepper.done()
	}

	var dropped int64
	if queue != nil {
		queue.Close()
		relay.Wait()
		dropped = queue.Dropped()
	}

	comparisons, swaps := c.array.Counters()
	result := ir.Result{
		RunInfo: run.info,
		Stats: ir.Stats{
			Comparisons: comparisons,
			Swaps:       swaps,
			Elapsed:     watch.Elapsed(),
		},
		Output:  c.array.Snapshot(),
		Events:  stepper.Seq(),
		Dropped: dropped,
	}

	var next ir.RunState
	switch {
	case err == nil:
		result.Outcome = ir.OutcomeCompleted
		next = ir.StateCompleted
	case IsCancelled(err):
		result.Outcome = ir.OutcomeCancelled
		next = ir.StateStopped
	default:
		result.Outcome = ir.OutcomeFaulted
		result.Err = newInternalError(run.info.ID, err)
		next = ir.StateIdle
	}

	c.array.clearHighlight()
	c.mu.Lock()
	c.state = next
	c.last = &result
	c.mu.Unlock()

	if result.Err != nil {
		c.logger.Error("run faulted",
			"run_id", run.info.ID,
			"algorithm", run.info.Algorithm.String(),
			"events", result.Events,
			"error", result.Err,
		)
	} else {
		c.logger.Info("run finished",
			"run_id", run.info.ID,
			"outcome", string(result.Outcome),
			"comparisons", comparisons,
			"swaps", swaps,
			"elapsed", result.Stats.Elapsed,
			"dropped", dropped,
		)
	}

	obs.OnFinish(result)

	c.mu.Lock()
	if c.run == run {
		c.run = nil
	}
	c.mu.Unlock()
	close(run.done)
}

// runDriver converts a driver panic into a fault.
func runDriver(d Driver, s *Stepper) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("driver panic: %v", r)
		}
	}()
	return d(s)
}

// Pause holds the driver at its next checkpoint. Pausing a paused run is a
// no-op.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case ir.StatePaused:
		return nil
	case ir.StateRunning:
		c.run.ctl.Pause()
		c.state = ir.StatePaused
		c.logger.Debug("run paused", "run_id", c.run.info.ID)
		return nil
	default:
		return newTransitionError("pause", c.runID(), c.state)
	}
}

// Resume releases a paused run. Resuming a running run is a no-op.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case ir.StateRunning:
		return nil
	case ir.StatePaused:
		c.run.ctl.Resume()
		c.state = ir.StateRunning
		c.logger.Debug("run resumed", "run_id", c.run.info.ID)
		return nil
	default:
		return newTransitionError("resume", c.runID(), c.state)
	}
}

// TogglePause pauses a running run or resumes a paused one.
func (c *Controller) TogglePause() (ir.RunState, error) {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	var err error
	if state == ir.StatePaused {
		err = c.Resume()
	} else {
		err = c.Pause()
	}
	return c.State(), err
}

// Stop requests cancellation and waits until the driver path has exited.
// Must not be called from an observer callback.
func (c *Controller) Stop() error {
	done, err := c.requestStop()
	if err != nil {
		return err
	}
	<-done
	return nil
}

// RequestStop requests cancellation without waiting.
func (c *Controller) RequestStop() error {
	_, err := c.requestStop()
	return err
}

func (c *Controller) requestStop() (<-chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Active() {
		return nil, newTransitionError("stop", c.runID(), c.state)
	}
	c.run.ctl.Stop()
	c.logger.Debug("stop requested", "run_id", c.run.info.ID)
	return c.run.done, nil
}

// Wait blocks until the current run has fully finished and returns its
// result. With no run in flight it returns the most recent result.
func (c *Controller) Wait(ctx context.Context) (ir.Result, error) {
	c.mu.Lock()
	run := c.run
	c.mu.Unlock()

	if run != nil {
		select {
		case <-run.done:
		case <-ctx.Done():
			return ir.Result{}, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return ir.Result{}, errors.New("no run has finished")
	}
	return *c.last, nil
}

// SetDelay changes the per-step delay. An active run picks it up at its
// next checkpoint.
func (c *Controller) SetDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.delay = clampDelay(d)
	if c.run != nil {
		c.run.ctl.SetDelay(c.delay)
	}
}

// Delay returns the configured per-step delay.
func (c *Controller) Delay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delay
}

// Load replaces the array. Rejected with ErrAlreadyRunning while a run is
// active. A terminal state returns to Idle.
func (c *Controller) Load(values []int) error {
	c.mu.Lock()
	for c.run != nil && !c.state.Active() {
		done := c.run.done
		c.mu.Unlock()
		<-done
		c.mu.Lock()
	}
	defer c.mu.Unlock()

	if c.state.Active() {
		return newAlreadyRunningError(c.runID(), c.state)
	}
	c.array.load(values)
	c.state = ir.StateIdle
	return nil
}

// View returns a consistent snapshot for rendering.
func (c *Controller) View() ir.View {
	v := c.array.view()
	v.State = c.State()
	return v
}

// Values returns a copy of the current array.
func (c *Controller) Values() []int {
	return c.array.Snapshot()
}

// State returns the current run state.
func (c *Controller) State() ir.RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Held reports whether a paused run's driver has reached its checkpoint
// and is blocked there.
func (c *Controller) Held() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run != nil && c.state == ir.StatePaused && c.run.ctl.Parked()
}

// LastResult returns the result of the most recently finished run.
func (c *Controller) LastResult() (ir.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return ir.Result{}, false
	}
	return *c.last, true
}

// Observe adds an observer for subsequent runs.
func (c *Controller) Observe(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// runID returns the active run ID. Caller must hold c.mu.
func (c *Controller) runID() string {
	if c.run == nil {
		return ""
	}
	return c.run.info.ID
}
