package chanx

import (
	"context"
	"errors"

	"github.com/baxromumarov/csp"
)

// ErrClosed is returned by [PutBatch] when the channel closes before every
// value was put.
var ErrClosed = errors.New("chanx: channel closed")

// PutBatch puts each value in values onto ch, in order. It returns the
// number of values put, with ErrClosed if ch was closed first, or the
// context error if ctx ended first.
func PutBatch[T any](ctx context.Context, ch csp.Chan[T], values []T) (int, error) {
	for i, v := range values {
		if !ch.Put(ctx, v) {
			if err := ctx.Err(); err != nil {
				return i, err
			}
			return i, ErrClosed
		}
	}
	return len(values), nil
}

// TakeBatch takes up to n items from ch. It returns the items taken and
// nil once it has n of them or ch is closed and drained, or the items
// taken so far and the context error if ctx ends first.
//
// TakeBatch panics if n is not positive.
func TakeBatch[T any](ctx context.Context, ch csp.Chan[T], n int) ([]T, error) {
	if n <= 0 {
		panic("chanx: TakeBatch requires n > 0")
	}
	result := make([]T, 0, n)
	for len(result) < n {
		v, ok := ch.Take(ctx)
		if !ok {
			return result, ctx.Err()
		}
		result = append(result, v)
	}
	return result, nil
}
