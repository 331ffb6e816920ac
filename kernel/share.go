package kernel

import (
	"sync"
	"sync/atomic"
)

// Share is a single-writer, multi-reader latest-value cell.
//
// Reads never observe a partially written value, even when tasks are driven
// from more than one goroutine on a hosted build.
type Share[T any] struct {
	mu  sync.Mutex
	v   T
	seq atomic.Uint32
}

// NewShare returns a share holding initial.
func NewShare[T any](initial T) *Share[T] {
	s := &Share[T]{}
	s.v = initial
	return s
}

// Write replaces the value and bumps the sequence counter.
func (s *Share[T]) Write(v T) uint32 {
	s.mu.Lock()
	s.v = v
	s.mu.Unlock()
	return s.seq.Add(1)
}

// Read returns the most recently written value.
func (s *Share[T]) Read() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v
}

// Seq returns the number of writes so far.
func (s *Share[T]) Seq() uint32 {
	return s.seq.Load()
}
