package logserver

import (
	"errors"
	"testing"
	"time"

	"github.com/albertlin1194/fly-vr/internal/logevent"
)

func TestUnboundedQueueNeverBlocksProducers(t *testing.T) {
	q := NewQueue(0)
	for i := 0; i < 10000; i++ {
		if err := q.Put(&logevent.WriteEvent{Path: "/x"}); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}
	if got := q.Len(); got != 10000 {
		t.Fatalf("Len = %d, want 10000", got)
	}
	q.Shutdown()
	if err := q.Put(&logevent.WriteEvent{Path: "/x"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Put after Shutdown = %v, want ErrClosed", err)
	}
}

func TestBoundedQueueShutdownReleasesBlockedProducer(t *testing.T) {
	q := NewQueue(1)
	if err := q.Put(&logevent.WriteEvent{Path: "/x"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	released := make(chan error, 1)
	go func() {
		released <- q.Put(&logevent.WriteEvent{Path: "/y"})
	}()

	// Give the producer time to block on the full queue.
	time.Sleep(20 * time.Millisecond)
	q.Shutdown()

	select {
	case err := <-released:
		if err != nil && !errors.Is(err, ErrClosed) {
			t.Fatalf("blocked Put = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("blocked producer was never released")
	}
}

func TestQueuePreservesOrder(t *testing.T) {
	q := NewQueue(0)
	for i := 0; i < 5; i++ {
		if err := q.Put(&logevent.WriteEvent{Path: string(rune('a' + i))}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	for i := 0; i < 5; i++ {
		ev := (<-q.Out()).(logevent.Event)
		if want := string(rune('a' + i)); ev.DatasetPath() != want {
			t.Fatalf("event %d path = %q, want %q", i, ev.DatasetPath(), want)
		}
	}
	q.Shutdown()
}
