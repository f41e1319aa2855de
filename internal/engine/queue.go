package engine

import (
	"sync"

	"github.com/roach88/sortviz/internal/ir"
)

// eventQueue is the thread-safe FIFO between the driver path (producer) and
// the relay goroutine (consumer) that delivers events to the observer.
//
// With capacity 0 the queue is unbounded and the driver never blocks on a
// slow observer. With a positive capacity the queue coalesces: when full,
// the oldest pending event is discarded to make room. Order among the
// surviving events is preserved and the terminal Done event is never
// discarded, because it is always the last event enqueued.
//
// Counters are not affected by coalescing; every event carries the
// running totals at its emission.
//
// The queue uses a channel for signaling so the relay can wait without
// holding the mutex.
type eventQueue struct {
	mu       sync.Mutex
	events   []ir.StepEvent
	capacity int
	dropped  int64
	closed   bool
	signal   chan struct{} // buffered, size 1; closed on Close
}

// newEventQueue creates an empty queue. capacity <= 0 means unbounded.
func newEventQueue(capacity int) *eventQueue {
	if capacity < 0 {
		capacity = 0
	}
	initial := 64
	if capacity > 0 && capacity < initial {
		initial = capacity
	}
	return &eventQueue{
		events:   make([]ir.StepEvent, 0, initial),
		capacity: capacity,
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e ir.StepEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	if q.capacity > 0 && len(q.events) >= q.capacity {
		// Coalesce: drop the oldest pending event.
		q.events[0] = ir.StepEvent{}
		q.events = q.events[1:]
		q.dropped++
	}
	q.events = append(q.events, e)

	// Non-blocking: the size-1 buffer coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (StepEvent{}, false) if the queue is empty.
func (q *eventQueue) TryDequeue() (ir.StepEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return ir.StepEvent{}, false
	}

	e := q.events[0]
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Wait returns a channel that signals when events may be available.
// The channel is closed once the queue is closed.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Dropped returns the number of events discarded by coalescing.
func (q *eventQueue) Dropped() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Closed reports whether Close has been called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close signals that no more events will be enqueued.
// Pending events remain available to TryDequeue.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

// drain delivers every event to fn in order until the queue is closed and
// empty.
func (q *eventQueue) drain(fn func(ir.StepEvent)) {
	for {
		if e, ok := q.TryDequeue(); ok {
			fn(e)
			continue
		}
		if q.Closed() && q.Len() == 0 {
			return
		}
		<-q.Wait()
	}
}
