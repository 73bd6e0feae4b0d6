package csp

import (
	"context"
	"io"
	"iter"
	"sync/atomic"
)

// Iterator consumes a channel item by item. Each step is a [Chan.Take]
// without a deadline of its own; the sequence ends once the channel is
// closed and drained, and cannot be restarted.
//
// An Iterator only ever removes items, so several of them, or other
// consumers, may share a channel: each item is seen by exactly one.
type Iterator[T any] struct {
	ch  Chan[T]
	eof atomic.Bool
}

// Iterate returns an Iterator over ch.
func Iterate[T any](ch Chan[T]) *Iterator[T] {
	return &Iterator[T]{ch: ch}
}

// Next returns the next item, waiting for one if needed. It returns io.EOF
// once the channel is closed and drained, and keeps returning io.EOF after
// that. If ctx ends first, it returns ctx.Err() and the iterator stays
// usable.
func (it *Iterator[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if it.eof.Load() {
		return zero, io.EOF
	}
	if v, ok := it.ch.Take(ctx); ok {
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	it.eof.Store(true)
	return zero, io.EOF
}

// ForEach calls fn for every remaining item. It stops at the first error
// from fn, which it returns, or when ctx ends, returning ctx.Err().
// Exhausting the channel is not an error.
func (it *Iterator[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for {
		v, err := it.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}

// ToSlice collects every remaining item. On cancellation it returns the
// items collected so far together with ctx.Err().
func (it *Iterator[T]) ToSlice(ctx context.Context) ([]T, error) {
	var out []T
	err := it.ForEach(ctx, func(v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}

// All returns a single-use sequence of the items of ch, for use with range.
// The sequence ends when ch is closed and drained, or ctx ends.
func All[T any](ctx context.Context, ch Chan[T]) iter.Seq[T] {
	it := Iterate(ch)
	return func(yield func(T) bool) {
		for {
			v, err := it.Next(ctx)
			if err != nil || !yield(v) {
				return
			}
		}
	}
}
