package chanx

import (
	"context"

	"github.com/baxromumarov/csp"
)

// Split routes each item of in to match if fn returns true for it, and to
// rest otherwise. Both outputs are closed when in is closed and drained,
// or ctx ends.
//
// A single goroutine feeds both outputs, so a full output holds up the
// other one: consume both.
//
// Split panics if fn is nil.
func Split[T any](
	ctx context.Context,
	in csp.Chan[T],
	fn func(T) bool,
	opts ...Option,
) (match *csp.Channel[T], rest *csp.Channel[T]) {
	if fn == nil {
		panic("chanx: Split requires non-nil predicate")
	}

	cfg := newConfig(opts)
	match = newChannel[T](cfg)
	rest = newChannel[T](cfg)

	go func() {
		defer match.Close()
		defer rest.Close()
		for {
			v, ok := in.Take(ctx)
			if !ok {
				return
			}
			out := rest
			if fn(v) {
				out = match
			}
			if !out.Put(ctx, v) {
				return
			}
		}
	}()

	return match, rest
}
