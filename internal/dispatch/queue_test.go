package dispatch

import (
	"context"
	"testing"
	"time"
)

func TestPostAndRunPreservesOrder(t *testing.T) {
	q := NewQueue(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		q.Run(ctx)
		close(done)
	}()

	results := make(chan int, 3)
	for i := 1; i <= 3; i++ {
		i := i
		if !q.Post(func() { results <- i }) {
			t.Fatalf("Post(%d) rejected", i)
		}
	}

	for want := 1; want <= 3; want++ {
		select {
		case got := <-results:
			if got != want {
				t.Fatalf("job order: got %d, want %d", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for job %d", want)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestPostDropsWhenFull(t *testing.T) {
	q := NewQueue(2)
	// No consumer running: the third post must be rejected, not block.
	if !q.Post(func() {}) || !q.Post(func() {}) {
		t.Fatal("posts within capacity were rejected")
	}
	if q.Post(func() {}) {
		t.Fatal("Post beyond capacity should drop and return false")
	}
	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}
}

func TestPostNilJobRejected(t *testing.T) {
	q := NewQueue(2)
	if q.Post(nil) {
		t.Fatal("Post(nil) should be rejected")
	}
	if q.Len() != 0 {
		t.Fatalf("Len = %d, want 0", q.Len())
	}
}

func TestNewQueueDefaultCapacity(t *testing.T) {
	q := NewQueue(0)
	if cap(q.jobs) != defaultCapacity {
		t.Fatalf("capacity = %d, want %d", cap(q.jobs), defaultCapacity)
	}
}
