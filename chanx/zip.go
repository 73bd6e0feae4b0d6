package chanx

import (
	"context"
	"errors"
	"io"
	"slices"

	"github.com/baxromumarov/csp"
)

var errZipClosed = errors.New("chanx: zip input closed")

// ZipIterator yields one item from each of its channels at a time. See
// [IterZip].
//
// A ZipIterator is single-consumer, and it expects to be the only
// consumer of its channels: an item taken by someone else between the
// wait and the take would leave the tuple incomplete.
type ZipIterator[T any] struct {
	chs  []csp.Chan[T]
	done bool
}

// IterZip returns an iterator whose i-th step yields the i-th item taken
// from each of chs, in the order of chs. It ends as soon as any channel
// is closed, even if others still hold items.
func IterZip[T any](chs ...csp.Chan[T]) *ZipIterator[T] {
	return &ZipIterator[T]{chs: slices.Clone(chs)}
}

// Next waits until every channel has an item and takes one from each. It
// returns io.EOF once any channel is closed, and ctx.Err() if ctx ends
// first.
func (it *ZipIterator[T]) Next(ctx context.Context) ([]T, error) {
	if it.done || len(it.chs) == 0 || it.anyClosed() {
		it.done = true
		return nil, io.EOF
	}

	err := csp.Run(ctx, func(sp csp.Spawner) {
		for _, ch := range it.chs {
			sp.Go("zip-item", func(ctx context.Context) error {
				if !ch.Item(ctx) {
					return errZipClosed
				}
				return nil
			})
		}
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil || it.anyClosed() {
		it.done = true
		return nil, io.EOF
	}

	out := make([]T, len(it.chs))
	for i, ch := range it.chs {
		v, ok := ch.Poll()
		if !ok {
			it.done = true
			return nil, io.EOF
		}
		out[i] = v
	}
	return out, nil
}

func (it *ZipIterator[T]) anyClosed() bool {
	return slices.ContainsFunc(it.chs, func(ch csp.Chan[T]) bool {
		return ch.IsClosed()
	})
}
