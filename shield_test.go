package csp_test

import (
	"context"
	"errors"
	"testing"

	"github.com/baxromumarov/csp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prohibited(t *testing.T, op string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		err, ok := recover().(error)
		require.True(t, ok, "expected a panic for %s", op)
		assert.True(t, errors.Is(err, csp.ErrProhibitedOperation))

		var pe *csp.ProhibitedOperationError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, op, pe.Op)
	}()
	fn()
}

func TestShieldFromClose(t *testing.T) {
	ctx := context.Background()
	ch := csp.NewChannel[int](2)
	s := csp.ShieldFromClose[int](ch)

	prohibited(t, "close", s.Close)
	assert.False(t, ch.IsClosed())

	assert.True(t, s.Offer(1))
	assert.True(t, s.Put(ctx, 2))
	v, ok := s.Take(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, s.Len())

	ch.Close()
	assert.True(t, s.IsClosed())
}

func TestShieldFromRead(t *testing.T) {
	ctx := context.Background()
	ch := csp.NewChannel[int](2)
	s := csp.ShieldFromRead[int](ch)

	assert.True(t, s.Offer(1))
	assert.True(t, s.Capacity(ctx))
	prohibited(t, "poll", func() { s.Poll() })
	prohibited(t, "take", func() { s.Take(ctx) })
	prohibited(t, "item", func() { s.Item(ctx) })
	assert.Equal(t, 1, ch.Len())

	s.Close()
	assert.True(t, ch.IsClosed())
}

func TestShieldFromWrite(t *testing.T) {
	ctx := context.Background()
	ch := csp.NewChannel[int](2)
	ch.Offer(1)
	s := csp.ShieldFromWrite[int](ch)

	prohibited(t, "offer", func() { s.Offer(2) })
	prohibited(t, "put", func() { s.Put(ctx, 2) })
	prohibited(t, "capacity", func() { s.Capacity(ctx) })

	v, ok := s.Poll()
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestShield_Silent(t *testing.T) {
	ctx := context.Background()
	ch := csp.NewChannel[int](1)
	ch.Offer(1)

	csp.ShieldFromClose[int](ch, csp.Silent()).Close()
	assert.False(t, ch.IsClosed())

	r := csp.ShieldFromRead[int](ch, csp.Silent())
	v, ok := r.Poll()
	assert.False(t, ok)
	assert.Zero(t, v)
	_, ok = r.Take(ctx)
	assert.False(t, ok)
	assert.False(t, r.Item(ctx))

	w := csp.ShieldFromWrite[int](ch, csp.Silent())
	assert.False(t, w.Offer(2))
	assert.False(t, w.Put(ctx, 2))
	assert.False(t, w.Capacity(ctx))

	assert.Equal(t, 1, ch.PollOr(0))
}

func TestShield_Stacked(t *testing.T) {
	ch := csp.NewChannel[int](1)
	s := csp.ShieldFromWrite(csp.ShieldFromClose[int](ch, csp.Silent()))

	s.Close()
	assert.False(t, ch.IsClosed())
	prohibited(t, "offer", func() { s.Offer(1) })
}

func TestShield_WorksWithSelect(t *testing.T) {
	ch := csp.NewChannel[int](1)
	ch.Offer(5)

	sel := csp.Select(context.Background(), []csp.Op{csp.Read(csp.ShieldFromClose[int](ch))})
	assert.Equal(t, 5, sel.Value)
}

func TestProhibitedOperationError(t *testing.T) {
	err := &csp.ProhibitedOperationError{Op: "close"}
	assert.EqualError(t, err, "csp: prohibited operation: close")
	assert.ErrorIs(t, err, csp.ErrProhibitedOperation)
	assert.NotErrorIs(t, err, csp.ErrInvalidArgument)
}
