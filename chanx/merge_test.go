package chanx

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/baxromumarov/csp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_AllItems(t *testing.T) {
	ctx := testContext(t)
	a := filled(true, 1, 2)
	b := filled(true, 3, 4)

	out := Merge(ctx, chans(a, b))

	assert.ElementsMatch(t, []int{1, 2, 3, 4}, collect[int](t, out))
}

func TestMerge_ClosesOnlyWhenAllInputsClose(t *testing.T) {
	ctx := testContext(t)
	a := filled(true, 1)
	b := csp.NewChannel[int](1)

	out := Merge(ctx, chans(a, b))

	v, ok := out.Take(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	assert.Never(t, out.IsClosed, 50*time.Millisecond, 5*time.Millisecond)

	b.Offer(2)
	b.Close()
	assert.Equal(t, []int{2}, collect[int](t, out))
}

func TestMerge_NoInputs(t *testing.T) {
	out := Merge[int](testContext(t), nil)
	assert.Empty(t, collect[int](t, out))
}

func TestMerge_LateItems(t *testing.T) {
	ctx := testContext(t)
	a := csp.NewChannel[string](1)
	b := csp.NewChannel[string](1)

	out := Merge(ctx, chans(a, b), WithSize(4))

	go func() {
		a.Put(ctx, "a1")
		b.Put(ctx, "b1")
		a.Put(ctx, "a2")
		a.Close()
		b.Close()
	}()

	assert.ElementsMatch(t, []string{"a1", "b1", "a2"}, collect[string](t, out))
	assert.Equal(t, 4, out.Cap())
}

func TestMerge_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := Merge(ctx, chans(csp.NewChannel[int](1)))

	cancel()
	assert.Eventually(t, out.IsClosed, waitFor, 5*time.Millisecond)
}

func TestIterMerge(t *testing.T) {
	ctx := testContext(t)
	it := IterMerge[int](filled(true, 1), filled(true, 2, 3))

	var got []int
	for {
		v, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.ElementsMatch(t, []int{1, 2, 3}, got)

	_, err := it.Next(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestIterMerge_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := IterMerge[int](csp.NewChannel[int](1)).Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIterMerge_UnreadableChannel(t *testing.T) {
	ctx := testContext(t)
	unreadable := csp.ShieldFromRead[int](csp.NewChannel[int](1), csp.Silent())

	_, err := IterMerge(unreadable).Next(ctx)
	assert.Equal(t, io.EOF, err)
}
