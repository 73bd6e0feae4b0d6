package csp

import "context"

// Port is the element-type independent part of a channel's capability set.
// Select and Mix use it to wait on, identify and close channels of any type.
type Port interface {
	// Capacity blocks while the channel is full and open. It reports true
	// once there is room, and false if the channel closes or ctx ends first.
	Capacity(ctx context.Context) bool

	// Item blocks while the channel is empty and open. It reports true once
	// an item is available, and false if the channel closes empty or ctx
	// ends first.
	Item(ctx context.Context) bool

	// Closed blocks until the channel is closed (true) or ctx ends (false).
	Closed(ctx context.Context) bool

	// Close closes the channel. It is idempotent.
	Close()

	IsClosed() bool

	// Done returns a channel that is closed when the channel is closed.
	Done() <-chan struct{}

	Len() int
	Cap() int
	Empty() bool
	Full() bool
}

// Chan is the full capability set of a channel carrying T. [*Channel] and
// the shield wrappers implement it.
type Chan[T any] interface {
	Port

	// Offer adds v without blocking, reporting whether it was accepted.
	Offer(v T) bool

	// Poll removes the oldest item without blocking.
	Poll() (T, bool)

	// Put adds v, waiting for capacity while the channel is full.
	Put(ctx context.Context, v T) bool

	// Take removes the oldest item, waiting while the channel is empty.
	Take(ctx context.Context) (T, bool)
}

var (
	_ Chan[int] = (*Channel[int])(nil)
	_ Chan[int] = (*closeShield[int])(nil)
	_ Chan[int] = (*readShield[int])(nil)
	_ Chan[int] = (*writeShield[int])(nil)
)
