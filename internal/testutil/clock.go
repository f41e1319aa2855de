package testutil

import (
	"sync"
	"time"
)

// Epoch is the first time a DeterministicClock reports.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock is a clock for tests that advances by a fixed tick on
// every read, so measured durations depend only on how often it is read.
//
// It satisfies engine.Clock. Safe for concurrent use.
type DeterministicClock struct {
	mu    sync.Mutex
	tick  time.Duration
	reads int64
}

// NewDeterministicClock creates a clock that advances by tick per read.
// The first Now returns Epoch.
func NewDeterministicClock(tick time.Duration) *DeterministicClock {
	return &DeterministicClock{tick: tick}
}

// Now returns the current time and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Epoch.Add(time.Duration(c.reads) * c.tick)
	c.reads++
	return t
}

// Reads returns how many times Now has been called.
func (c *DeterministicClock) Reads() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Reset rewinds the clock to Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads = 0
}
