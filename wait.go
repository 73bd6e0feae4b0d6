package csp

import (
	"context"
	"fmt"
)

// waitFunc is one branch of a composite wait, e.g. [Channel.Item].
type waitFunc func(ctx context.Context) bool

// waitAny runs fns concurrently and reports whether any of them reported
// true. It returns as soon as one does; branches reporting false (a closed
// channel) do not end the wait unless all of them do. The remaining
// branches are cancelled and joined before waitAny returns.
func waitAny(ctx context.Context, fns ...waitFunc) bool {
	found, _ := compose(ctx, "wait-any", true, fns)
	return found && ctx.Err() == nil
}

// waitAll runs fns concurrently and reports whether all of them reported
// true before ctx ended. The first false result ends the wait.
func waitAll(ctx context.Context, fns ...waitFunc) bool {
	if len(fns) == 0 {
		return ctx.Err() == nil
	}
	found, complete := compose(ctx, "wait-all", false, fns)
	return !found && complete && ctx.Err() == nil
}

// compose returns found as soon as a branch reports want. Otherwise it
// returns once every branch has reported, with complete set, or ctx ends.
func compose(ctx context.Context, name string, want bool, fns []waitFunc) (found, complete bool) {
	if len(fns) == 0 {
		return false, true
	}

	results := make(chan bool, len(fns))
	sc, sp := NewScope(ctx)
	for i, fn := range fns {
		sp.Go(fmt.Sprintf("%s[%d]", name, i), func(ctx context.Context) error {
			results <- fn(ctx)
			return nil
		})
	}

	remaining := len(fns)
loop:
	for remaining > 0 {
		select {
		case r := <-results:
			remaining--
			if r == want {
				found = true
				break loop
			}
		case <-ctx.Done():
			break loop
		}
	}

	sc.Cancel(nil)
	_ = sc.Wait()
	return found, remaining == 0
}
