package csp_test

import (
	"bytes"
	"context"
	"sync"

	"github.com/baxromumarov/csp"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// gatedChan hides its items from Poll and Item until gate is closed, so a
// test can make several channels ready at the same moment.
type gatedChan[T any] struct {
	*csp.Channel[T]
	gate <-chan struct{}
}

func newGatedChan[T any](gate <-chan struct{}, items ...T) *gatedChan[T] {
	ch := csp.NewChannel[T](max(len(items), 1))
	for _, v := range items {
		ch.Offer(v)
	}
	return &gatedChan[T]{Channel: ch, gate: gate}
}

func (g *gatedChan[T]) open() bool {
	select {
	case <-g.gate:
		return true
	default:
		return false
	}
}

func (g *gatedChan[T]) Poll() (T, bool) {
	if !g.open() {
		var zero T
		return zero, false
	}
	return g.Channel.Poll()
}

// Item ignores ctx while the gate is shut: the gate is always opened.
func (g *gatedChan[T]) Item(ctx context.Context) bool {
	<-g.gate
	return g.Channel.Item(ctx)
}

// raceLoser behaves like a gatedChan, except that once the gate opens some
// other consumer always empties and closes it right before Poll gets to it.
type raceLoser[T any] struct {
	*gatedChan[T]
}

func (r *raceLoser[T]) Poll() (T, bool) {
	var zero T
	if !r.open() {
		return zero, false
	}
	for {
		if _, ok := r.Channel.Poll(); !ok {
			break
		}
	}
	r.Channel.Close()
	return zero, false
}

// syncBuffer is a bytes.Buffer safe for the concurrent writes of loggers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newTestLogger returns a trace level JSON logger writing to w, without
// timestamps.
func newTestLogger(w *syncBuffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(w),
			stumpy.WithTimeField(``),
		),
		stumpy.L.WithLevel(logiface.LevelTrace),
	).Logger()
}
