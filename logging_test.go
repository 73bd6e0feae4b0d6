package csp_test

import (
	"context"
	"testing"

	"github.com/baxromumarov/csp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogger(t *testing.T) {
	prev := csp.Logger()
	t.Cleanup(func() { csp.SetLogger(prev) })

	var logs syncBuffer
	l := newTestLogger(&logs)
	csp.SetLogger(l)
	assert.Same(t, l, csp.Logger())

	out := csp.NewChannel[int](1)
	m := csp.NewMix(context.Background(), out)
	out.Close()
	require.NoError(t, m.Wait())

	assert.Contains(t, logs.String(), `"lvl":"debug"`)
	assert.Contains(t, logs.String(), `"mode":"off"`)
	assert.Contains(t, logs.String(), `"msg":"mix: started"`)
	assert.Contains(t, logs.String(), `"msg":"mix: stopped"`)
}

func TestNilLoggerIsSilent(t *testing.T) {
	prev := csp.Logger()
	t.Cleanup(func() { csp.SetLogger(prev) })
	csp.SetLogger(nil)

	assert.NotPanics(t, func() {
		_ = csp.Run(context.Background(), func(sp csp.Spawner) {
			sp.Go("bad", func(ctx context.Context) error { panic("quiet") })
		}, csp.WithPanicAsError())
	})
}
