package logserver

import (
	"errors"
	"sync"

	"github.com/eapache/channels"

	"github.com/albertlin1194/fly-vr/internal/logevent"
)

// ErrClosed is returned by Put after the server has shut the queue down.
var ErrClosed = errors.New("logserver: queue closed")

// Queue carries events from producer goroutines to the single server loop.
// Depth 0 selects an unbounded queue so that producers on acquisition
// deadlines never block on the writer; a positive depth bounds memory and
// applies backpressure instead.
type Queue struct {
	mu     sync.RWMutex
	closed bool
	ch     channels.Channel
}

// NewQueue builds a queue with the given depth policy.
func NewQueue(depth int) *Queue {
	var ch channels.Channel
	if depth <= 0 {
		ch = channels.NewInfiniteChannel()
	} else {
		ch = channels.NewNativeChannel(channels.BufferCap(depth))
	}
	return &Queue{ch: ch}
}

// Put enqueues one event. It blocks when a bounded queue is full and fails
// once the queue has been shut down.
func (q *Queue) Put(ev logevent.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	q.ch.In() <- ev
	return nil
}

// Out exposes the consumer side. Only the server loop reads it.
func (q *Queue) Out() <-chan interface{} { return q.ch.Out() }

// Len reports the number of buffered events.
func (q *Queue) Len() int { return q.ch.Len() }

// Shutdown closes the queue and discards anything still buffered. The
// drainer starts before the closed flag flips so a producer blocked on a
// full bounded queue is released rather than deadlocked against Put's lock.
func (q *Queue) Shutdown() {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for range q.ch.Out() {
		}
	}()

	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.ch.Close()
	}
	q.mu.Unlock()
	<-drained
}
