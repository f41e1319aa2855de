package engine

import "time"

// Clock supplies wall time for elapsed-time statistics.
//
// Wall time never orders events: step events are ordered by their sequence
// number, which the driver path assigns. The clock only measures how long a
// run took, so tests can substitute a deterministic implementation.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// stopwatch measures the elapsed time of one run.
type stopwatch struct {
	clock Clock
	start time.Time
}

func startStopwatch(c Clock) stopwatch {
	return stopwatch{clock: c, start: c.Now()}
}

// Elapsed returns the time since the stopwatch started.
func (s stopwatch) Elapsed() time.Duration {
	return s.clock.Now().Sub(s.start)
}
