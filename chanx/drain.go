package chanx

import (
	"context"

	"github.com/baxromumarov/csp"
)

// Drain takes and discards items from ch until it is closed and drained,
// or ctx ends. It returns the number of items discarded. Use it to unblock
// producers during shutdown.
func Drain[T any](ctx context.Context, ch csp.Chan[T]) int {
	n := 0
	for {
		if _, ok := ch.Take(ctx); !ok {
			return n
		}
		n++
	}
}
