// Package engine implements the instrumented, interruptible sorting engine.
//
// The engine runs one sorting driver at a time against an ArrayState and
// emits a StepEvent for every comparison and mutation, while pause, resume,
// speed and stop commands arrive from other goroutines.
//
// ARCHITECTURE:
//
// Single Driver Path:
// Controller.Start launches the chosen Driver on its own goroutine. The
// driver is the only writer of the array while the run is Running or
// Paused. Everything else reads snapshots through the ArrayState lock.
//
// Event Flow:
// 1. Stepper.Compare passes the run's Control checkpoint (pause, stop, delay)
// 2. The array counters are updated and the event is stamped with them
// 3. The event is enqueued to a FIFO queue
// 4. A relay goroutine drains the queue into the observers
// 5. On exit the queue is closed and drained before OnFinish
//
// Cancellation:
// Stop is cooperative. The driver returns ErrCancelled from its next
// checkpoint and unwinds by ordinary returns. Recursive drivers check stop
// on every call. Controller.Stop waits for the path to exit, so the array
// is quiescent before any new run starts.
//
// CRITICAL PATTERNS:
//
// Sequence Numbers:
// Events are ordered by Seq, assigned on the driver path starting at 1.
// Wall time only measures elapsed time.
//
// Running Totals:
// Every event carries the comparison and swap totals at its emission, so an
// observer never sees counters behind the event it is handling, even when a
// bounded queue coalesces events.
package engine
