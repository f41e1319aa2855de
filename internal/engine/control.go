package engine

import (
	"sync"
	"time"
)

// Control is the signalling surface between the controller and the single
// driver path of one run.
//
// Two independently settable signals (pause, stop) and the live per-step
// delay are guarded by one mutex. Checkpoint blocks on a condition variable
// while paused, so a paused driver consumes no CPU and wakes as soon as
// Resume or Stop is called.
//
// Thread-safety model:
//   - Pause, Resume, Stop, SetDelay: safe from any goroutine
//   - Checkpoint: called only from the driver path
type Control struct {
	mu      sync.Mutex
	cond    *sync.Cond
	paused  bool
	stopped bool
	parked  bool // driver is blocked in Checkpoint
	delay   time.Duration
	stopCh  chan struct{} // closed by Stop; interrupts throttle sleeps
}

// NewControl creates a control in the running (not paused) state.
func NewControl(delay time.Duration) *Control {
	c := &Control{
		delay:  clampDelay(delay),
		stopCh: make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// ShouldStop reports whether stop has been requested.
func (c *Control) ShouldStop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// IsPaused reports whether the driver is held at its next checkpoint.
func (c *Control) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Parked reports whether the driver is blocked at a paused checkpoint.
// Pause only takes hold at the next checkpoint, so a driver may emit a few
// more events between Pause and Parked becoming true.
func (c *Control) Parked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parked
}

// CurrentDelay returns the per-step delay in effect for the next wait.
func (c *Control) CurrentDelay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delay
}

// Pause holds the driver at its next checkpoint.
func (c *Control) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = true
}

// Resume releases a paused driver.
func (c *Control) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = false
	c.cond.Broadcast()
}

// Stop requests cancellation. Idempotent.
func (c *Control) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.stopCh)
	c.cond.Broadcast()
}

// SetDelay changes the per-step delay. A throttle sleep already in progress
// keeps its old duration; the new value applies from the next checkpoint.
func (c *Control) SetDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = clampDelay(d)
}

// Checkpoint is the only suspension point of a driver:
//  1. if stop was requested, returns ErrCancelled
//  2. while paused, waits (re-checking stop on every wake)
//  3. sleeps for the current delay, read after the pause ends, and returns
//     ErrCancelled if stop arrives during the sleep
func (c *Control) Checkpoint() error {
	c.mu.Lock()
	for c.paused && !c.stopped {
		c.parked = true
		c.cond.Wait()
	}
	c.parked = false
	if c.stopped {
		c.mu.Unlock()
		return ErrCancelled
	}
	d := c.delay
	c.mu.Unlock()

	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-c.stopCh:
		return ErrCancelled
	}
}

// Done returns a channel closed when stop is requested.
func (c *Control) Done() <-chan struct{} {
	return c.stopCh
}

func clampDelay(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
