package chanx

import (
	"context"

	"github.com/baxromumarov/csp"
)

// FromChan returns a channel receiving every value sent on in. It is
// closed when in is closed, or ctx ends.
//
// Values that are nil (see [csp.ErrInvalidValue]) are skipped.
func FromChan[T any](ctx context.Context, in <-chan T, opts ...Option) *csp.Channel[T] {
	cfg := newConfig(opts)
	out := newChannel[T](cfg)
	log := cfg.log()

	go func() {
		defer out.Close()
		for {
			select {
			case v, ok := <-in:
				if !ok {
					return
				}
				if !csp.IsValue(v) {
					log.Debug().Log("chanx: nil value skipped")
					continue
				}
				if !out.Put(ctx, v) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// ToChan returns a native channel receiving the items of ch. It is closed
// when ch is closed and drained, or ctx ends.
func ToChan[T any](ctx context.Context, ch csp.Chan[T]) <-chan T {
	out := make(chan T)

	go func() {
		defer close(out)
		for {
			v, ok := ch.Take(ctx)
			if !ok {
				return
			}
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
