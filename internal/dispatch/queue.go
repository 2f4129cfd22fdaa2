// Package dispatch serializes callbacks onto a single consumer goroutine.
// Hotkey activations arrive on OS event threads; pushing them through the
// queue keeps document mutation and launch side effects single-threaded.
package dispatch

import (
	"context"
	"log/slog"
)

// defaultCapacity bounds the queue. Activations are user keystrokes, so the
// queue only fills when the consumer is wedged; dropping beats blocking the
// OS hook thread.
const defaultCapacity = 64

// Queue is a bounded FIFO of callbacks executed by Run in arrival order.
type Queue struct {
	jobs chan func()
}

// NewQueue returns a queue with the given capacity, or the default when
// capacity is not positive.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Queue{jobs: make(chan func(), capacity)}
}

// Post enqueues job without blocking. Returns false when the queue is full;
// the job is dropped with a warning, never executed inline on the caller's
// goroutine.
func (q *Queue) Post(job func()) bool {
	if job == nil {
		return false
	}
	select {
	case q.jobs <- job:
		return true
	default:
		slog.Warn("[dispatch] queue full, dropping job", "capacity", cap(q.jobs))
		return false
	}
}

// Run consumes jobs until ctx is cancelled. Jobs run one at a time on the
// calling goroutine; a panicking job is contained by the caller's recovery
// wrapper, not here.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			job()
		}
	}
}

// Len reports the number of queued jobs. Diagnostic only; the value is stale
// the moment it returns.
func (q *Queue) Len() int {
	return len(q.jobs)
}
