package chanx

import (
	"context"
	"iter"

	"github.com/baxromumarov/csp"
)

// OntoChannel puts every value of seq onto ch, in order, stopping early if
// ch closes or ctx ends. If closeCh is set, ch is closed afterwards.
//
// The returned channel is closed once copying has stopped.
func OntoChannel[T any](ctx context.Context, ch csp.Chan[T], seq iter.Seq[T], closeCh bool) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)
		if closeCh {
			defer ch.Close()
		}
		for v := range seq {
			if ch.IsClosed() || !ch.Put(ctx, v) {
				return
			}
		}
	}()

	return done
}

// ToChannel returns a new channel receiving every value of seq, closed
// once they have all been put.
func ToChannel[T any](ctx context.Context, seq iter.Seq[T], opts ...Option) *csp.Channel[T] {
	out := newChannel[T](newConfig(opts))
	OntoChannel(ctx, out, seq, true)
	return out
}
