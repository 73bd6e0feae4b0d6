package chanx

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baxromumarov/csp"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// filled returns a channel holding items, closed if closeIt is set.
func filled[T any](closeIt bool, items ...T) *csp.Channel[T] {
	ch := csp.NewChannel[T](max(len(items), 1))
	for _, v := range items {
		ch.Offer(v)
	}
	if closeIt {
		ch.Close()
	}
	return ch
}

// collect takes every item of ch until it is closed and drained.
func collect[T any](t *testing.T, ch csp.Chan[T]) []T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()

	got, err := csp.Iterate(ch).ToSlice(ctx)
	require.NoError(t, err, "channel was not closed in time")
	return got
}

func chans[T any](chs ...*csp.Channel[T]) []csp.Chan[T] {
	out := make([]csp.Chan[T], len(chs))
	for i, ch := range chs {
		out[i] = ch
	}
	return out
}

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

// count returns the number of logged lines containing s.
func (b *syncBuffer) count(s string) int {
	n := 0
	for _, line := range strings.Split(b.String(), "\n") {
		if strings.Contains(line, s) {
			n++
		}
	}
	return n
}

func newTestLogger(w *syncBuffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(w),
			stumpy.WithTimeField(``),
		),
		stumpy.L.WithLevel(logiface.LevelTrace),
	).Logger()
}
