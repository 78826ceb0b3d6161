// Package queue implements the Pending Payments Queue (spec.md §4.C): an
// in-process, multi-producer/multi-consumer FIFO decoupling HTTP intake
// from upstream submission.
package queue

import (
	"sync"

	"github.com/dd0wney/paymentgw/pkg/store"
)

// PendingPayment is a payment accepted from a client but not yet
// submitted upstream (spec.md §3): just the amount and the client's
// correlation id. Which gateway it eventually goes to is decided at
// submit time, not at enqueue time.
type PendingPayment struct {
	Amount        float64
	CorrelationID store.CorrelationID
}

// Queue is a bounded FIFO of PendingPayment. Enqueue never blocks
// indefinitely: once the buffer is full, the oldest item is dropped to
// make room, matching spec.md §4.C's "enqueue never blocks indefinitely."
// Dequeue blocks until an item is available or the queue is closed.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []PendingPayment
	cap    int
	closed bool
}

// New creates a Queue with the given capacity. A capacity of 0 means
// unbounded.
func New(capacity int) *Queue {
	q := &Queue{cap: capacity}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends p to the tail of the queue. If the queue is at
// capacity, the oldest pending item is dropped first so Enqueue itself
// never blocks.
func (q *Queue) Enqueue(p PendingPayment) (dropped bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return true
	}

	if q.cap > 0 && len(q.items) >= q.cap {
		q.items = q.items[1:]
		dropped = true
	}
	q.items = append(q.items, p)
	q.cond.Signal()
	return dropped
}

// Dequeue blocks until an item is available or the queue is closed, in
// which case it returns (PendingPayment{}, false).
func (q *Queue) Dequeue() (PendingPayment, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return PendingPayment{}, false
	}

	p := q.items[0]
	q.items = q.items[1:]
	return p, true
}

// Purge atomically discards all pending items (spec.md §4.C).
func (q *Queue) Purge() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

// Len reports the current number of pending items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close causes every blocked and future Dequeue to return immediately
// with ok=false. Safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
