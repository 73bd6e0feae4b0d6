package csp

import "fmt"

// Overflow selects what a [Buffer] does with an item added while full.
type Overflow int

const (
	// Block rejects the add; the caller must wait for capacity.
	Block Overflow = iota
	// Drop silently discards the incoming item.
	Drop
	// Slide evicts the oldest stored item to admit the incoming one.
	Slide
)

func (o Overflow) String() string {
	switch o {
	case Block:
		return "blocking"
	case Drop:
		return "dropping"
	case Slide:
		return "sliding"
	default:
		return fmt.Sprintf("Overflow(%d)", int(o))
	}
}

// Buffer is a bounded FIFO ring with a fixed capacity and an [Overflow]
// policy. It is not safe for concurrent use; a [Channel] owns its buffer
// exclusively.
type Buffer[T any] struct {
	s        []T
	r, w     uint
	overflow Overflow
}

// NewBlockingBuffer returns a buffer of size n that refuses adds while full.
// It panics with [ErrInvalidArgument] if n < 1.
func NewBlockingBuffer[T any](n int) *Buffer[T] {
	return newBuffer[T](n, Block)
}

// NewDroppingBuffer returns a buffer of size n that discards incoming items
// while full. It panics with [ErrInvalidArgument] if n < 1.
func NewDroppingBuffer[T any](n int) *Buffer[T] {
	return newBuffer[T](n, Drop)
}

// NewSlidingBuffer returns a buffer of size n that evicts the oldest item to
// make room for an incoming one. It panics with [ErrInvalidArgument] if n < 1.
func NewSlidingBuffer[T any](n int) *Buffer[T] {
	return newBuffer[T](n, Slide)
}

func newBuffer[T any](n int, o Overflow) *Buffer[T] {
	if n < 1 {
		panic(fmt.Errorf("%w: buffer size must be a positive integer, not %d", ErrInvalidArgument, n))
	}
	return &Buffer[T]{
		s:        make([]T, n),
		overflow: o,
	}
}

func (b *Buffer[T]) index(v uint) uint {
	return v % uint(len(b.s))
}

// Overflow returns the buffer's overflow policy.
func (b *Buffer[T]) Overflow() Overflow { return b.overflow }

// Len returns the number of stored items.
func (b *Buffer[T]) Len() int { return int(b.w - b.r) }

// Cap returns the fixed capacity.
func (b *Buffer[T]) Cap() int { return len(b.s) }

// Empty reports whether no items are stored.
func (b *Buffer[T]) Empty() bool { return b.r == b.w }

// Full reports whether an add would be refused. Dropping and sliding
// buffers always accept an add, so they are never full.
func (b *Buffer[T]) Full() bool {
	return b.overflow == Block && b.Len() == len(b.s)
}

// Add stores v according to the overflow policy. It returns false only for
// a full blocking buffer; a dropping buffer reports true even when v was
// discarded.
func (b *Buffer[T]) Add(v T) bool {
	if b.Len() == len(b.s) {
		switch b.overflow {
		case Drop:
			return true
		case Slide:
			b.Remove()
		default:
			return false
		}
	}
	b.s[b.index(b.w)] = v
	b.w++
	return true
}

// Remove removes and returns the oldest item.
func (b *Buffer[T]) Remove() (T, bool) {
	var zero T
	if b.Empty() {
		return zero, false
	}
	i := b.index(b.r)
	v := b.s[i]
	b.s[i] = zero
	b.r++
	return v, true
}

// Peek returns the oldest item without removing it.
func (b *Buffer[T]) Peek() (T, bool) {
	if b.Empty() {
		var zero T
		return zero, false
	}
	return b.s[b.index(b.r)], true
}
