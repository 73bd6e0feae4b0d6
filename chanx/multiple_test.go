package chanx

import (
	"context"
	"testing"
	"time"

	"github.com/baxromumarov/csp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiple_FanOut(t *testing.T) {
	ctx := testContext(t)
	src := csp.NewChannel[int](1)
	a := csp.NewChannel[int](4)
	b := csp.NewChannel[int](4)

	m := NewMultiple[int](ctx, src)
	require.True(t, m.AddOutput(a, true))
	require.True(t, m.AddOutput(b, true))
	assert.Equal(t, 2, m.Outputs())

	n, err := PutBatch[int](ctx, src, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	src.Close()

	assert.Equal(t, []int{1, 2, 3}, collect[int](t, a))
	assert.Equal(t, []int{1, 2, 3}, collect[int](t, b))
	<-m.Done()
	assert.True(t, m.IsDone())
	assert.Equal(t, "Multiple(done)", m.String())
	assert.False(t, m.AddOutput(csp.NewChannel[int](1), true))
}

func TestMultiple_KeepsOutputOpen(t *testing.T) {
	ctx := testContext(t)
	src := csp.NewChannel[int](1)
	keep := csp.NewChannel[int](1)
	end := csp.NewChannel[int](1)

	m := NewMultiple[int](ctx, src)
	m.AddOutput(keep, true)
	m.AddOutput(end, true)
	// Re-adding only updates the flag.
	m.AddOutput(keep, false)
	assert.Equal(t, 2, m.Outputs())

	require.True(t, src.Put(ctx, 1))
	src.Close()

	<-m.Done()
	assert.False(t, keep.IsClosed())
	assert.True(t, end.IsClosed())
}

func TestMultiple_SlowestOutputSetsPace(t *testing.T) {
	ctx := testContext(t)
	src := csp.NewChannel[int](4)
	fast := csp.NewChannel[int](4)
	slow := csp.NewChannel[int](1)

	m := NewMultiple[int](ctx, src)
	m.AddOutput(fast, false)
	m.AddOutput(slow, false)

	for i := 1; i <= 3; i++ {
		require.True(t, src.Offer(i))
	}

	require.Eventually(t, func() bool { return fast.Len() == 2 }, waitFor, time.Millisecond)
	assert.Never(t, func() bool { return fast.Len() > 2 }, 50*time.Millisecond, 5*time.Millisecond)

	got, err := TakeBatch[int](ctx, slow, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
	require.Eventually(t, func() bool { return fast.Len() == 3 }, waitFor, time.Millisecond)
}

func TestMultiple_RemoveOutput(t *testing.T) {
	ctx := testContext(t)
	src := csp.NewChannel[int](1)
	a := csp.NewChannel[int](4)
	b := csp.NewChannel[int](4)

	m := NewMultiple[int](ctx, src)
	m.AddOutput(a, true)
	m.AddOutput(b, true)
	m.RemoveOutput(b)
	assert.Equal(t, 1, m.Outputs())

	require.True(t, src.Put(ctx, 1))
	src.Close()

	assert.Equal(t, []int{1}, collect[int](t, a))
	<-m.Done()
	assert.True(t, b.Empty())
	assert.False(t, b.IsClosed())
}

func TestMultiple_RemovesClosedOutputs(t *testing.T) {
	ctx := testContext(t)
	src := csp.NewChannel[int](1)
	open := csp.NewChannel[int](4)
	closed := csp.NewChannel[int](4)
	closed.Close()
	var buf syncBuffer

	m := NewMultiple[int](ctx, src, WithLogger(newTestLogger(&buf)))
	m.AddOutput(open, true)
	m.AddOutput(closed, true)

	require.True(t, src.Put(ctx, 1))
	require.Eventually(t, func() bool { return m.Outputs() == 1 }, waitFor, time.Millisecond)
	assert.Contains(t, buf.String(), `"msg":"chanx: closed output removed"`)

	require.True(t, src.Put(ctx, 2))
	src.Close()
	assert.Equal(t, []int{1, 2}, collect[int](t, open))
}

func TestMultiple_DropsWithoutOutputs(t *testing.T) {
	ctx := testContext(t)
	src := csp.NewChannel[int](1)
	var buf syncBuffer

	m := NewMultiple[int](ctx, src, WithLogger(newTestLogger(&buf)))
	m.AddOutput(csp.NewChannel[int](1), false)
	m.RemoveAllOutputs()
	assert.Zero(t, m.Outputs())

	require.True(t, src.Put(ctx, 1))
	require.Eventually(t, func() bool {
		return buf.count(`"msg":"chanx: item dropped"`) == 1
	}, waitFor, time.Millisecond)
	assert.Contains(t, buf.String(), `"reason":"no outputs"`)

	out := csp.NewChannel[int](1)
	m.AddOutput(out, true)
	require.True(t, src.Put(ctx, 2))
	src.Close()
	assert.Equal(t, []int{2}, collect[int](t, out))
}

func TestMultiple_DropLogIsRateLimited(t *testing.T) {
	ctx := testContext(t)
	src := filled(true, 1, 2, 3, 4, 5)
	var buf syncBuffer

	m := NewMultiple[int](ctx, src,
		WithLogger(newTestLogger(&buf)),
		WithDropLogRate(map[time.Duration]int{time.Hour: 2}),
	)
	<-m.Done()

	assert.Equal(t, 2, buf.count(`"msg":"chanx: item dropped"`))
}

func TestMultiple_DropLogUnlimited(t *testing.T) {
	ctx := testContext(t)
	src := filled(true, 1, 2, 3, 4, 5)
	var buf syncBuffer

	m := NewMultiple[int](ctx, src, WithLogger(newTestLogger(&buf)), WithDropLogRate(nil))
	<-m.Done()

	assert.Equal(t, 5, buf.count(`"msg":"chanx: item dropped"`))
}

func TestMultiple_CancelLeavesOutputsOpen(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := csp.NewChannel[int](1)

	m := NewMultiple[int](ctx, csp.NewChannel[int](1))
	m.AddOutput(out, true)
	assert.Equal(t, "Multiple(active)", m.String())

	cancel()
	<-m.Done()
	assert.True(t, m.IsDone())
	assert.False(t, out.IsClosed())
}
