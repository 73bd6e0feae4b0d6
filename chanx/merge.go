package chanx

import (
	"context"
	"io"
	"slices"

	"github.com/baxromumarov/csp"
)

// MergeIterator yields items from whichever of its channels has one. See
// [IterMerge].
//
// A MergeIterator is single-consumer: Next must not be called
// concurrently.
type MergeIterator[T any] struct {
	chs []csp.Chan[T]
}

// IterMerge returns an iterator over the items of all chs, in no
// particular order across channels. It ends when every channel is closed
// and drained.
func IterMerge[T any](chs ...csp.Chan[T]) *MergeIterator[T] {
	return &MergeIterator[T]{chs: slices.Clone(chs)}
}

// Next returns the next item from any channel. It returns io.EOF once all
// channels are closed and drained, and ctx.Err() if ctx ends first.
func (it *MergeIterator[T]) Next(ctx context.Context) (T, error) {
	var zero T
	it.chs = slices.DeleteFunc(it.chs, exhausted[T])
	if len(it.chs) == 0 {
		return zero, io.EOF
	}

	ops := make([]csp.Op, len(it.chs))
	for i, ch := range it.chs {
		ops[i] = csp.Read(ch)
	}
	if sel := csp.Select(ctx, ops); sel.OK() {
		return sel.Value.(T), nil
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	// Every channel closed, or refuses to be read.
	it.chs = nil
	return zero, io.EOF
}

// Merge returns a channel receiving the items of all chs (fan-in). It is
// closed once every input is closed and drained, or ctx ends. The order
// of items across inputs is non-deterministic.
func Merge[T any](ctx context.Context, chs []csp.Chan[T], opts ...Option) *csp.Channel[T] {
	cfg := newConfig(opts)
	out := newChannel[T](cfg)
	it := IterMerge(chs...)

	go func() {
		defer out.Close()
		for {
			v, err := it.Next(ctx)
			if err != nil {
				return
			}
			if !out.Put(ctx, v) {
				return
			}
		}
	}()

	return out
}

// exhausted reports whether ch is closed with nothing left to take.
func exhausted[T any](ch csp.Chan[T]) bool {
	return ch.IsClosed() && ch.Empty()
}
