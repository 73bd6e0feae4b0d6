package chanx

import (
	"context"

	"github.com/baxromumarov/csp"
)

// Map returns a channel receiving fn applied to each tuple of items taken
// from chs, one item per input, index-aligned (see [IterZip]). The output
// is closed as soon as any input closes, or ctx ends.
//
// Map panics if fn is nil.
func Map[T, U any](ctx context.Context, fn func([]T) U, chs []csp.Chan[T], opts ...Option) *csp.Channel[U] {
	if fn == nil {
		panic("chanx: Map requires non-nil fn")
	}

	cfg := newConfig(opts)
	out := newChannel[U](cfg)
	it := IterZip(chs...)

	go func() {
		defer out.Close()
		for {
			items, err := it.Next(ctx)
			if err != nil {
				return
			}
			if !out.Put(ctx, fn(items)) {
				return
			}
		}
	}()

	return out
}

// Filter returns a channel receiving the items of in for which fn returns
// true. The output is closed when in is closed and drained, or ctx ends.
//
// Filter panics if fn is nil.
func Filter[T any](ctx context.Context, in csp.Chan[T], fn func(T) bool, opts ...Option) *csp.Channel[T] {
	if fn == nil {
		panic("chanx: Filter requires non-nil predicate")
	}

	cfg := newConfig(opts)
	out := newChannel[T](cfg)

	go func() {
		defer out.Close()
		for {
			v, ok := in.Take(ctx)
			if !ok {
				return
			}
			if !fn(v) {
				continue
			}
			if !out.Put(ctx, v) {
				return
			}
		}
	}()

	return out
}

// Reduce folds fn over every item of in, starting from init, and puts the
// final value on the returned channel, which is then closed. If in closes
// without yielding an item, the value is init. If ctx ends first, the
// channel is closed empty.
//
// The final value must not be nil (see [csp.ErrInvalidValue]). Reduce
// panics if fn is nil.
func Reduce[T, A any](ctx context.Context, in csp.Chan[T], init A, fn func(A, T) A) *csp.Channel[A] {
	if fn == nil {
		panic("chanx: Reduce requires non-nil fn")
	}

	out := csp.NewChannel[A](1)

	go func() {
		defer out.Close()
		acc := init
		for {
			v, ok := in.Take(ctx)
			if !ok {
				break
			}
			acc = fn(acc, v)
		}
		if ctx.Err() != nil {
			return
		}
		out.Put(ctx, acc)
	}()

	return out
}
