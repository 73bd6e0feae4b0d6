package chanx

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/baxromumarov/csp"
	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

type output[T any] struct {
	ch    csp.Chan[T]
	close bool
}

// Multiple copies every item taken from a source channel to each of a set
// of output channels (fan-out). Outputs can be added and removed at any
// time; items taken while there are none are dropped.
//
// An item is put on all outputs concurrently, and the next item is only
// taken once every output has accepted it (or closed), so the slowest
// output sets the pace. Outputs found closed are removed.
type Multiple[T any] struct {
	src     csp.Chan[T]
	log     *logiface.Logger[logiface.Event]
	limiter *catrate.Limiter

	mu   sync.Mutex
	outs []output[T]
	done bool

	finished chan struct{}
}

// NewMultiple starts copying items from src. It stops when src is closed
// and drained, closing the outputs added with close set, or when ctx
// ends, leaving the outputs open.
func NewMultiple[T any](ctx context.Context, src csp.Chan[T], opts ...Option) *Multiple[T] {
	cfg := newConfig(opts)
	m := &Multiple[T]{
		src:      src,
		log:      cfg.log(),
		limiter:  cfg.limiter(),
		finished: make(chan struct{}),
	}
	go m.run(ctx)
	return m
}

// AddOutput starts copying items to ch. If closeOnDone is set, ch is
// closed when the source is. It returns false if the multiple is done.
// Adding an output twice is a no-op, apart from updating closeOnDone.
func (m *Multiple[T]) AddOutput(ch csp.Chan[T], closeOnDone bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return false
	}
	if i := m.index(ch); i >= 0 {
		m.outs[i].close = closeOnDone
		return true
	}
	m.outs = append(m.outs, output[T]{ch: ch, close: closeOnDone})
	return true
}

// RemoveOutput stops copying items to ch.
func (m *Multiple[T]) RemoveOutput(ch csp.Chan[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.index(ch); i >= 0 {
		m.outs = slices.Delete(m.outs, i, i+1)
	}
}

// RemoveAllOutputs removes every output.
func (m *Multiple[T]) RemoveAllOutputs() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outs = nil
}

// Outputs returns the number of outputs.
func (m *Multiple[T]) Outputs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.outs)
}

// IsDone reports whether the multiple has stopped.
func (m *Multiple[T]) IsDone() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Done returns a channel that is closed once the multiple has stopped and
// closed its outputs.
func (m *Multiple[T]) Done() <-chan struct{} {
	return m.finished
}

func (m *Multiple[T]) String() string {
	state := "active"
	if m.IsDone() {
		state = "done"
	}
	return fmt.Sprintf("Multiple(%s)", state)
}

func (m *Multiple[T]) index(ch csp.Chan[T]) int {
	return slices.IndexFunc(m.outs, func(o output[T]) bool {
		return o.ch == ch
	})
}

func (m *Multiple[T]) snapshot() []output[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.outs)
}

func (m *Multiple[T]) run(ctx context.Context) {
	defer close(m.finished)

	for {
		v, ok := m.src.Take(ctx)
		if !ok {
			break
		}

		outs := m.snapshot()
		if len(outs) == 0 {
			dropped(m.log, m.limiter, "no outputs")
			continue
		}

		m.prune(m.put(ctx, outs, v))
	}

	m.mu.Lock()
	m.done = true
	outs := m.outs
	m.outs = nil
	m.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	for _, o := range outs {
		if o.close {
			o.ch.Close()
		}
	}
}

var errOutputClosed = errors.New("chanx: output closed")

// put offers v to every output concurrently, waiting until each has taken
// it or closed. It returns the outputs found closed.
func (m *Multiple[T]) put(ctx context.Context, outs []output[T], v T) []csp.Chan[T] {
	byTask := make(map[string]csp.Chan[T], len(outs))
	err := csp.Run(ctx, func(sp csp.Spawner) {
		for i, o := range outs {
			name := fmt.Sprintf("multiple-put[%d]", i)
			byTask[name] = o.ch
			sp.Go(name, func(ctx context.Context) error {
				if !o.ch.Put(ctx, v) && o.ch.IsClosed() {
					return errOutputClosed
				}
				return nil
			})
		}
	}, csp.WithPolicy(csp.Collect), csp.WithLogger(m.log))

	var closed []csp.Chan[T]
	for _, e := range unwrapAll(err) {
		info, ok := csp.TaskOf(e)
		if ok && errors.Is(csp.CauseOf(e), errOutputClosed) {
			closed = append(closed, byTask[info.Name])
		}
	}
	return closed
}

// prune removes outputs that closed on their own.
func (m *Multiple[T]) prune(closed []csp.Chan[T]) {
	for _, ch := range closed {
		m.log.Debug().Log("chanx: closed output removed")
		m.RemoveOutput(ch)
	}
}

// unwrapAll flattens an [errors.Join] result.
func unwrapAll(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	if err != nil {
		return []error{err}
	}
	return nil
}

// dropped reports an item that had nowhere to go, at most as often as
// limiter allows per reason.
func dropped(log *logiface.Logger[logiface.Event], limiter *catrate.Limiter, reason string) {
	if _, ok := limiter.Allow(reason); !ok {
		return
	}
	log.Debug().
		Str("reason", reason).
		Log("chanx: item dropped")
}
