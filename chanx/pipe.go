package chanx

import (
	"context"

	"github.com/baxromumarov/csp"
)

// Pipe moves items from src to dest until src is closed and drained, dest
// is closed, or ctx ends. An item is only taken from src once dest has
// room for it. If closeDest is set, dest is closed when src is.
//
// The returned channel is closed when Pipe has stopped.
func Pipe[T any](ctx context.Context, src, dest csp.Chan[T], closeDest bool, opts ...Option) <-chan struct{} {
	log := newConfig(opts).log()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for dest.Capacity(ctx) {
			v, ok := src.Take(ctx)
			if !ok {
				break
			}
			if !dest.Put(ctx, v) {
				log.Warning().Log("chanx: pipe destination closed, item dropped")
				break
			}
		}
		if closeDest && src.IsClosed() {
			dest.Close()
		}
	}()

	return done
}
