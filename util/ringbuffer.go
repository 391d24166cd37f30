package util

import "sync"

// RingBuffer keeps the last N items added to it. It is safe for concurrent
// use.
type RingBuffer[T any] struct {
	mu     sync.Mutex
	buffer []T
	index  uint
	full   bool
}

func NewRingBuffer[T any](size uint) *RingBuffer[T] {
	if size == 0 {
		size = 1
	}
	return &RingBuffer[T]{buffer: make([]T, size)}
}

func (buf *RingBuffer[T]) Add(item T) {
	buf.mu.Lock()
	defer buf.mu.Unlock()

	buf.buffer[buf.index] = item
	buf.index++
	if buf.index == uint(len(buf.buffer)) {
		buf.index = 0
		buf.full = true
	}
}

// GetAll returns the stored items, oldest first.
func (buf *RingBuffer[T]) GetAll() []T {
	buf.mu.Lock()
	defer buf.mu.Unlock()

	if !buf.full {
		return append([]T(nil), buf.buffer[:buf.index]...)
	}
	out := make([]T, 0, len(buf.buffer))
	out = append(out, buf.buffer[buf.index:]...)
	return append(out, buf.buffer[:buf.index]...)
}

// GetLast returns the most recent item and false when nothing was added yet.
func (buf *RingBuffer[T]) GetLast() (T, bool) {
	buf.mu.Lock()
	defer buf.mu.Unlock()

	var zero T
	switch {
	case buf.index > 0:
		return buf.buffer[buf.index-1], true
	case buf.full:
		return buf.buffer[len(buf.buffer)-1], true
	default:
		return zero, false
	}
}

func (buf *RingBuffer[T]) Len() int {
	buf.mu.Lock()
	defer buf.mu.Unlock()

	if buf.full {
		return len(buf.buffer)
	}
	return int(buf.index)
}
