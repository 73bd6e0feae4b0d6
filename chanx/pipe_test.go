package chanx

import (
	"context"
	"maps"
	"slices"
	"testing"
	"time"

	"github.com/baxromumarov/csp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipe(t *testing.T) {
	ctx := testContext(t)
	src := filled(true, 1, 2, 3)
	dest := csp.NewChannel[int](1)

	done := Pipe[int](ctx, src, dest, true)

	assert.Equal(t, []int{1, 2, 3}, collect[int](t, dest))
	<-done
}

func TestPipe_KeepsDestOpen(t *testing.T) {
	ctx := testContext(t)
	src := filled(true, 1)
	dest := csp.NewChannel[int](2)

	<-Pipe[int](ctx, src, dest, false)

	assert.False(t, dest.IsClosed())
	assert.Equal(t, 1, dest.Len())
}

func TestPipe_DestClosed(t *testing.T) {
	ctx := testContext(t)
	src := filled(false, 1, 2)
	dest := csp.NewChannel[int](1)
	dest.Close()

	<-Pipe[int](ctx, src, dest, true)

	// Nothing is taken from src once dest has no room.
	assert.Equal(t, 2, src.Len())
}

func TestPipe_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := Pipe[int](ctx, csp.NewChannel[int](1), csp.NewChannel[int](1), true)

	cancel()
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("pipe did not stop")
	}
}

func TestOntoChannel(t *testing.T) {
	ctx := testContext(t)
	ch := csp.NewChannel[string](1)

	done := OntoChannel[string](ctx, ch, slices.Values([]string{"a", "b", "c"}), true)

	assert.Equal(t, []string{"a", "b", "c"}, collect[string](t, ch))
	<-done
}

func TestOntoChannel_StopsWhenClosed(t *testing.T) {
	ctx := testContext(t)
	ch := csp.NewChannel[int](2)

	var pulled int
	seq := func(yield func(int) bool) {
		for i := 1; ; i++ {
			pulled = i
			if !yield(i) {
				return
			}
		}
	}

	done := OntoChannel[int](ctx, ch, seq, false)
	require.Eventually(t, ch.Full, waitFor, time.Millisecond)
	ch.Close()
	<-done

	assert.Equal(t, 3, pulled)
	assert.Equal(t, 2, ch.Len())
}

func TestToChannel(t *testing.T) {
	ctx := testContext(t)
	m := map[string]int{"a": 1, "b": 2}

	out := ToChannel(ctx, maps.Keys(m), WithSize(2))

	assert.ElementsMatch(t, []string{"a", "b"}, collect[string](t, out))
}
