package csp

import (
	"context"
	"fmt"
	"slices"

	"github.com/joeycumines/logiface"
)

// Op describes one candidate operation for [Select]: a read from a channel
// ([Read]) or a write of a value onto a channel ([Write]).
type Op struct {
	port  Port
	write bool
	exec  func() (any, bool)
}

// Read describes taking an item from ch.
func Read[T any](ch Chan[T]) Op {
	return Op{
		port: ch,
		exec: func() (any, bool) {
			v, ok := ch.Poll()
			return v, ok
		},
	}
}

// Write describes putting v onto ch. It panics with [ErrInvalidValue] if v
// is nil.
func Write[T any](ch Chan[T], v T) Op {
	mustBeValue(v)
	return Op{
		port:  ch,
		write: true,
		exec: func() (any, bool) {
			return true, ch.Offer(v)
		},
	}
}

// Chan returns the channel the operation targets.
func (op Op) Chan() Port { return op.port }

// IsWrite reports whether op was built by [Write].
func (op Op) IsWrite() bool { return op.write }

func (op Op) String() string {
	if op.write {
		return fmt.Sprintf("write(%v)", op.port)
	}
	return fmt.Sprintf("read(%v)", op.port)
}

func (op Op) wait(ctx context.Context) bool {
	if op.write {
		return op.port.Capacity(ctx)
	}
	return op.port.Item(ctx)
}

// dead reports whether op can never succeed again. Closing is permanent, and
// a closed channel cannot be refilled.
func (op Op) dead() bool {
	if op.write {
		return op.port.IsClosed()
	}
	return op.port.IsClosed() && op.port.Empty()
}

// Selected is the outcome of [Select].
type Selected struct {
	// Value is the item read, true for a write, or the default value.
	Value any

	// Chan is the channel of the executed operation, nil otherwise.
	Chan Port

	// Index is the position of the executed operation in the list passed
	// to Select, or -1.
	Index int

	// Default is set when Select returned the value given to [WithDefault].
	Default bool
}

// OK reports whether an operation was executed.
func (s Selected) OK() bool {
	return s.Index >= 0
}

type selectConfig struct {
	priority   bool
	hasDefault bool
	def        any
	logger     *logiface.Logger[logiface.Event]
}

// SelectOption configures a [Select] call.
type SelectOption func(*selectConfig)

// WithPriority makes Select prefer the earliest listed operation when
// several become ready in the same wait round.
func WithPriority() SelectOption {
	return func(c *selectConfig) {
		c.priority = true
	}
}

// WithDefault makes Select return v, with [Selected.Default] set, instead
// of waiting when no operation is immediately ready.
func WithDefault(v any) SelectOption {
	return func(c *selectConfig) {
		c.hasDefault = true
		c.def = v
	}
}

// WithSelectLogger sets the logger for Select's trace events, overriding
// the package logger.
func WithSelectLogger(l *logiface.Logger[logiface.Event]) SelectOption {
	return func(c *selectConfig) {
		c.logger = l
	}
}

// Select executes at most one of ops.
//
// The first operation that can complete without waiting, scanning ops in
// order, is executed. Failing that, the [WithDefault] value is returned if
// one was given. Otherwise Select waits in rounds: every pending operation
// waits for its channel (an item for a read, room for a write), and the
// operations whose wait completed are attempted in completion order, or in
// list order under [WithPriority]. An attempt can still fail when another
// goroutine got there first; such an operation stays pending unless its
// channel has closed for good. An operation whose wait gives up, because its
// channel closed or refuses to wait at all, is dropped.
//
// Select returns a result with Index -1 once no pending operation remains,
// or ctx ends. Waits started for a round never outlive it.
func Select(ctx context.Context, ops []Op, opts ...SelectOption) Selected {
	var cfg selectConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	for i, op := range ops {
		if v, ok := op.exec(); ok {
			return Selected{Value: v, Chan: op.port, Index: i}
		}
	}

	if cfg.hasDefault {
		return Selected{Value: cfg.def, Index: -1, Default: true}
	}

	log := resolveLogger(cfg.logger)

	pending := make([]int, 0, len(ops))
	for i, op := range ops {
		if !op.dead() {
			pending = append(pending, i)
		}
	}

	for round := 1; len(pending) > 0 && ctx.Err() == nil; round++ {
		log.Trace().
			Int("round", round).
			Int("pending", len(pending)).
			Log("select: waiting")

		ready, failed := selectRound(ctx, ops, pending)
		if cfg.priority {
			slices.Sort(ready)
		}

		for _, i := range ready {
			if v, ok := ops[i].exec(); ok {
				return Selected{Value: v, Chan: ops[i].port, Index: i}
			}
			log.Trace().
				Int("round", round).
				Int("index", i).
				Log("select: dud")
		}

		pending = slices.DeleteFunc(pending, func(i int) bool {
			return ops[i].dead() || slices.Contains(failed, i)
		})
	}

	return Selected{Index: -1}
}

// selectRound waits until at least one of the pending operations is ready,
// every one of them has failed, or ctx ends. It returns the indexes of the
// operations whose wait completed, in completion order, and of those whose
// wait gave up before the round was cancelled.
func selectRound(ctx context.Context, ops []Op, pending []int) (ready, failed []int) {
	type result struct {
		index int
		ok    bool
	}

	results := make(chan result, len(pending))
	sc, sp := NewScope(ctx)
	for _, i := range pending {
		op := ops[i]
		sp.Go(fmt.Sprintf("select[%d]", i), func(ctx context.Context) error {
			results <- result{index: i, ok: op.wait(ctx)}
			return nil
		})
	}

	remaining := len(pending)
wait:
	for remaining > 0 {
		select {
		case r := <-results:
			remaining--
			if r.ok {
				ready = append(ready, r.index)
				break wait
			}
			failed = append(failed, r.index)
		case <-ctx.Done():
			break wait
		}
	}

	sc.Cancel(nil)
	_ = sc.Wait()

	// Others may have become ready before the cancellation reached them.
	// Their false results are the cancellation's doing.
	for {
		select {
		case r := <-results:
			if r.ok {
				ready = append(ready, r.index)
			}
		default:
			return ready, failed
		}
	}
}
