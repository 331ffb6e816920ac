package kernel

import "sync"

// DefaultQueueSlots is the mailbox depth used when none is given.
const DefaultQueueSlots = 8

// Signal is the payload of one-shot command mailboxes.
type Signal struct{}

// Queue is a bounded FIFO mailbox.
//
// Any number of producers may Put; exactly one task drains it with Get.
// When the ring is full Put rejects the new item and counts it as dropped.
type Queue[T any] struct {
	mu      sync.Mutex
	head    uint32
	tail    uint32
	slots   []T
	dropped uint32
}

// NewQueue returns a queue with the given number of slots.
func NewQueue[T any](slots int) *Queue[T] {
	if slots <= 0 {
		slots = DefaultQueueSlots
	}
	return &Queue[T]{slots: make([]T, slots)}
}

// Put appends v, returning false if the queue is full.
func (q *Queue[T]) Put(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head-q.tail >= uint32(len(q.slots)) {
		q.dropped++
		return false
	}
	q.slots[q.head%uint32(len(q.slots))] = v
	q.head++
	return true
}

// Get removes and returns the oldest item. It returns false when empty.
func (q *Queue[T]) Get() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if q.tail == q.head {
		return zero, false
	}
	i := q.tail % uint32(len(q.slots))
	v := q.slots[i]
	q.slots[i] = zero
	q.tail++
	return v, true
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int(q.head - q.tail)
}

// Cap returns the number of slots.
func (q *Queue[T]) Cap() int { return len(q.slots) }

// Dropped returns how many items Put has rejected.
func (q *Queue[T]) Dropped() uint32 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Take dequeues one item if any is pending and reports whether it did.
// It is the usual way for a task to consume a command signal.
func (q *Queue[T]) Take() bool {
	_, ok := q.Get()
	return ok
}
