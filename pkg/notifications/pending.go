package notifications

import (
	"slices"
	"sync"
)

// PendingQueue buffers notifications for recipients without a live
// connection. Each recipient has an independent FIFO. When limit is
// positive, a queue holds at most limit entries and the oldest entries are
// dropped first.
type PendingQueue struct {
	mu     sync.Mutex
	limit  int
	queues map[string][]Notification
}

func NewPendingQueue(limit int) *PendingQueue {
	return &PendingQueue{
		limit:  max(limit, 0),
		queues: make(map[string][]Notification),
	}
}

// Enqueue appends n to its recipient's queue and returns the entries that
// were dropped to respect the limit.
func (q *PendingQueue) Enqueue(n Notification) []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.queues[n.Recipient] = append(q.queues[n.Recipient], n)
	return q.trim(n.Recipient)
}

// Requeue puts items back at the head of the recipient's queue, ahead of
// anything already queued.
func (q *PendingQueue) Requeue(recipient string, items []Notification) []Notification {
	if len(items) == 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.queues[recipient] = append(slices.Clone(items), q.queues[recipient]...)
	return q.trim(recipient)
}

// Drain removes and returns the recipient's queue in FIFO order.
func (q *PendingQueue) Drain(recipient string) []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.queues[recipient]
	delete(q.queues, recipient)
	return items
}

func (q *PendingQueue) Len(recipient string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues[recipient])
}

// Recipients returns how many recipients have buffered notifications.
func (q *PendingQueue) Recipients() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues)
}

func (q *PendingQueue) trim(recipient string) []Notification {
	items := q.queues[recipient]
	if q.limit == 0 || len(items) <= q.limit {
		return nil
	}
	over := len(items) - q.limit
	dropped := slices.Clone(items[:over])
	q.queues[recipient] = slices.Clone(items[over:])
	return dropped
}
