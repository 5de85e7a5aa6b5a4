// Package ring provides fixed-capacity FIFO buffers for bounded histories.
//
// A [Buffer] never grows past its capacity: a push onto a full buffer evicts
// the oldest element. Iteration always runs oldest to newest, which is the
// order renderers draw fading trails in.
package ring

import "iter"

// Buffer is a fixed-capacity FIFO ring. The zero value is not usable; call New.
type Buffer[T any] struct {
	data []T
	head int // index of the oldest element
	size int
}

// New creates a Buffer holding at most capacity elements. Capacities below
// one are raised to one.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{data: make([]T, capacity)}
}

// Push appends v, evicting the oldest element when the buffer is full.
func (b *Buffer[T]) Push(v T) {
	if b.size < len(b.data) {
		b.data[(b.head+b.size)%len(b.data)] = v
		b.size++
		return
	}
	b.data[b.head] = v
	b.head = (b.head + 1) % len(b.data)
}

func (b *Buffer[T]) Len() int { return b.size }
func (b *Buffer[T]) Cap() int { return len(b.data) }

// Clear empties the buffer without releasing its storage.
func (b *Buffer[T]) Clear() {
	var zero T
	for i := range b.data {
		b.data[i] = zero
	}
	b.head = 0
	b.size = 0
}

// At returns the i-th element counted from the oldest. It panics when i is
// out of range, like a slice index.
func (b *Buffer[T]) At(i int) T {
	if i < 0 || i >= b.size {
		panic("ring: index out of range")
	}
	return b.data[(b.head+i)%len(b.data)]
}

// Last returns the newest element and false when the buffer is empty.
func (b *Buffer[T]) Last() (T, bool) {
	if b.size == 0 {
		var zero T
		return zero, false
	}
	return b.At(b.size - 1), true
}

// Slice copies the contents out, oldest first.
func (b *Buffer[T]) Slice() []T {
	out := make([]T, b.size)
	n := copy(out, b.data[b.head:min(b.head+b.size, len(b.data))])
	copy(out[n:], b.data[:b.size-n])
	return out
}

// All yields (index, element) pairs oldest first.
func (b *Buffer[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < b.size; i++ {
			if !yield(i, b.data[(b.head+i)%len(b.data)]) {
				return
			}
		}
	}
}

// FadeWeight is the opacity renderers give the i-th of n trail points,
// 1 - (n-i)/n: the oldest point is transparent, later points more opaque.
func FadeWeight(i, n int) float64 {
	if n <= 0 {
		return 0
	}
	return 1 - float64(n-i)/float64(n)
}
