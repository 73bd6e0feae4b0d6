package csp

import (
	"context"
	"fmt"
	"sync"
)

// signal is a level-triggered broadcast event. While set, wait returns a
// closed channel, so every waiter wakes at once; waiters must re-check the
// condition they care about after waking.
type signal struct {
	ch  chan struct{}
	set bool
}

func newSignal() signal {
	return signal{ch: make(chan struct{})}
}

func (s *signal) update(v bool) {
	switch {
	case v && !s.set:
		close(s.ch)
		s.set = true
	case !v && s.set:
		s.ch = make(chan struct{})
		s.set = false
	}
}

func (s *signal) wait() <-chan struct{} {
	return s.ch
}

// Channel is a closable, capacity-bounded queue for coordinating producer
// and consumer goroutines. It is safe for concurrent use and is always
// shared by reference.
//
// Closing a channel only rejects new items: anything already buffered stays
// available to Poll, Take and iteration until drained.
type Channel[T any] struct {
	mu       sync.Mutex
	buf      *Buffer[T]
	closed   bool
	done     chan struct{}
	item     signal
	capacity signal
}

// NewChannel returns a channel backed by a blocking buffer of size n.
// It panics with [ErrInvalidArgument] if n < 1.
func NewChannel[T any](n int) *Channel[T] {
	return NewChannelWithBuffer(NewBlockingBuffer[T](n))
}

// NewChannelWithBuffer returns a channel that takes exclusive ownership of
// buf. It panics with [ErrInvalidArgument] if buf is nil.
func NewChannelWithBuffer[T any](buf *Buffer[T]) *Channel[T] {
	if buf == nil || buf.Cap() < 1 {
		panic(fmt.Errorf("%w: channel requires a buffer with positive capacity", ErrInvalidArgument))
	}
	c := &Channel[T]{
		buf:      buf,
		done:     make(chan struct{}),
		item:     newSignal(),
		capacity: newSignal(),
	}
	c.updateLocked()
	return c
}

// updateLocked brings both signals in line with the buffer. It must run
// after every mutation, before c.mu is released.
func (c *Channel[T]) updateLocked() {
	c.capacity.update(!c.buf.Full())
	c.item.update(!c.buf.Empty())
}

// Offer adds v without blocking. It returns false, leaving the channel
// untouched, if the channel is closed or full.
//
// Offer panics with [ErrInvalidValue] if v is nil.
func (c *Channel[T]) Offer(v T) bool {
	mustBeValue(v)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.buf.Full() {
		return false
	}
	c.buf.Add(v)
	c.updateLocked()
	return true
}

// Poll removes and returns the oldest item without blocking. The second
// result is false if the channel is empty. Poll keeps draining a closed
// channel.
func (c *Channel[T]) Poll() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.buf.Remove()
	if ok {
		c.updateLocked()
	}
	return v, ok
}

// PollOr is [Channel.Poll] returning def when the channel is empty.
func (c *Channel[T]) PollOr(def T) T {
	if v, ok := c.Poll(); ok {
		return v
	}
	return def
}

// Put adds v, waiting for capacity while the channel is full. It returns
// false if the channel is closed, or ctx ends, before v could be added.
//
// Put panics with [ErrInvalidValue] if v is nil.
func (c *Channel[T]) Put(ctx context.Context, v T) bool {
	for {
		if c.Offer(v) {
			return true
		}
		// Another producer may take the capacity first; Capacity
		// reporting true only means it is worth offering again.
		if !c.Capacity(ctx) {
			return false
		}
	}
}

// Take removes and returns the oldest item, waiting while the channel is
// empty. The second result is false if the channel is closed and drained,
// or ctx ends first.
func (c *Channel[T]) Take(ctx context.Context) (T, bool) {
	for {
		if v, ok := c.Poll(); ok {
			return v, true
		}
		if !c.Item(ctx) {
			var zero T
			return zero, false
		}
	}
}

// TakeOr is [Channel.Take] returning def when no item could be taken.
func (c *Channel[T]) TakeOr(ctx context.Context, def T) T {
	if v, ok := c.Take(ctx); ok {
		return v
	}
	return def
}

// Capacity blocks while the channel is full and open. It returns true as
// soon as there is room, and false if the channel is closed or ctx ends.
//
// Every waiter is woken when room appears, and only some of them may find
// it still there; the others go back to waiting.
func (c *Channel[T]) Capacity(ctx context.Context) bool {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return false
		}
		if !c.buf.Full() {
			c.mu.Unlock()
			return true
		}
		wake := c.capacity.wait()
		c.mu.Unlock()

		select {
		case <-wake:
		case <-c.done:
		case <-ctx.Done():
			return false
		}
	}
}

// Item blocks while the channel is empty and open. It returns true as soon
// as an item is available (also on a closed, not yet drained channel), and
// false if the channel is closed and empty or ctx ends.
//
// Every waiter is woken when an item appears, and only some of them may
// find it still there; the others go back to waiting.
func (c *Channel[T]) Item(ctx context.Context) bool {
	for {
		c.mu.Lock()
		if !c.buf.Empty() {
			c.mu.Unlock()
			return true
		}
		if c.closed {
			c.mu.Unlock()
			return false
		}
		wake := c.item.wait()
		c.mu.Unlock()

		select {
		case <-wake:
		case <-c.done:
		case <-ctx.Done():
			return false
		}
	}
}

// Closed blocks until the channel is closed, returning true, or until ctx
// ends, returning false.
func (c *Channel[T]) Closed(ctx context.Context) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case <-c.done:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close closes the channel. Buffered items remain available. Calling Close
// more than once has no further effect.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

// IsClosed reports whether Close has been called.
func (c *Channel[T]) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Done returns a channel that is closed when c is closed.
func (c *Channel[T]) Done() <-chan struct{} {
	return c.done
}

// Len returns the number of buffered items.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Len()
}

// Cap returns the capacity of the underlying buffer.
func (c *Channel[T]) Cap() int {
	return c.buf.Cap()
}

// Empty reports whether no items are buffered.
func (c *Channel[T]) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Empty()
}

// Full reports whether Offer would be refused for lack of room. Channels
// over dropping or sliding buffers are never full.
func (c *Channel[T]) Full() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Full()
}

func (c *Channel[T]) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := "open"
	if c.closed {
		state = "closed"
	}
	return fmt.Sprintf("Channel(%s items=%d capacity=%d %s)", state, c.buf.Len(), c.buf.Cap(), c.buf.Overflow())
}

