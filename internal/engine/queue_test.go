package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sortviz/internal/ir"
)

func seqEvent(seq int64) ir.StepEvent {
	e := ir.Compare(0, 1)
	e.Seq = seq
	return e
}

func TestEventQueue_EnqueueDequeue(t *testing.T) {
	q := newEventQueue(0)

	ok := q.Enqueue(seqEvent(1))
	require.True(t, ok, "enqueue should succeed")

	got, ok := q.TryDequeue()
	require.True(t, ok, "dequeue should succeed")
	assert.Equal(t, int64(1), got.Seq)
	assert.Equal(t, ir.EventCompare, got.Kind)
}

func TestEventQueue_FIFO(t *testing.T) {
	q := newEventQueue(0)

	for i := int64(1); i <= 3; i++ {
		q.Enqueue(seqEvent(i))
	}

	for want := int64(1); want <= 3; want++ {
		e, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, e.Seq)
	}
}

func TestEventQueue_EmptyDequeue(t *testing.T) {
	q := newEventQueue(0)

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestEventQueue_Unbounded(t *testing.T) {
	q := newEventQueue(0)

	for i := int64(1); i <= 1000; i++ {
		q.Enqueue(seqEvent(i))
	}

	assert.Equal(t, 1000, q.Len())
	assert.Equal(t, int64(0), q.Dropped())
}

func TestEventQueue_CoalescesOldest(t *testing.T) {
	q := newEventQueue(3)

	for i := int64(1); i <= 5; i++ {
		require.True(t, q.Enqueue(seqEvent(i)))
	}

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, int64(2), q.Dropped())

	var got []int64
	for {
		e, ok := q.TryDequeue()
		if !ok {
			break
		}
		got = append(got, e.Seq)
	}
	assert.Equal(t, []int64{3, 4, 5}, got, "survivors keep their order")
}

func TestEventQueue_DoneSurvivesCoalescing(t *testing.T) {
	q := newEventQueue(2)

	for i := int64(1); i <= 10; i++ {
		q.Enqueue(seqEvent(i))
	}
	done := ir.Done()
	done.Seq = 11
	q.Enqueue(done)
	q.Close()

	var last ir.StepEvent
	q.drain(func(e ir.StepEvent) { last = e })
	assert.Equal(t, ir.EventDone, last.Kind)
	assert.Equal(t, int64(11), last.Seq)
}

func TestEventQueue_Close(t *testing.T) {
	q := newEventQueue(0)

	q.Enqueue(seqEvent(1))
	q.Close()

	ok := q.Enqueue(seqEvent(2))
	assert.False(t, ok, "enqueue after close should fail")
	assert.True(t, q.Closed())

	// Pending events remain available.
	e, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, int64(1), e.Seq)

	// Close is idempotent.
	q.Close()
}

func TestEventQueue_WaitSignal(t *testing.T) {
	q := newEventQueue(0)

	signaled := make(chan bool, 1)
	go func() {
		select {
		case <-q.Wait():
			signaled <- true
		case <-time.After(time.Second):
			signaled <- false
		}
	}()

	time.Sleep(10 * time.Millisecond)
	q.Enqueue(seqEvent(1))

	assert.True(t, <-signaled, "Wait should signal after enqueue")
}

func TestEventQueue_WaitClosedOnClose(t *testing.T) {
	q := newEventQueue(0)
	q.Close()

	select {
	case _, ok := <-q.Wait():
		assert.False(t, ok, "signal channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("Wait channel should be closed after Close")
	}
}

func TestEventQueue_DrainConcurrentProducer(t *testing.T) {
	q := newEventQueue(0)
	const n = 500

	var got []int64
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		q.drain(func(e ir.StepEvent) { got = append(got, e.Seq) })
	}()

	for i := int64(1); i <= n; i++ {
		q.Enqueue(seqEvent(i))
	}
	q.Close()
	wg.Wait()

	require.Len(t, got, n)
	for i, seq := range got {
		assert.Equal(t, int64(i+1), seq)
	}
}
