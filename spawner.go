package csp

import (
	"context"
	"sync/atomic"
	"time"
)

// Spawner starts tasks within a scope.
type Spawner interface {
	// Spawn starts a named task that may spawn sub-tasks through the
	// Spawner it receives.
	Spawn(name string, fn TaskFunc)

	// Go starts a named task that does not spawn sub-tasks.
	Go(name string, fn func(ctx context.Context) error)
}

type spawner struct {
	s    *scope
	open atomic.Bool
}

func (sp *spawner) Go(name string, fn func(ctx context.Context) error) {
	sp.Spawn(name, func(ctx context.Context, _ Spawner) error {
		return fn(ctx)
	})
}

func (sp *spawner) Spawn(name string, fn TaskFunc) {
	// Checked before wg.Add so finalize's wg.Wait cannot be raced.
	if !sp.open.Load() {
		panic("csp: Spawn called after scope shutdown")
	}

	sp.s.wg.Add(1)

	info := TaskInfo{Name: name}

	go func() {
		defer sp.s.wg.Done()

		if sp.s.ctx.Err() != nil {
			return
		}

		// The child spawner dies with its task.
		child := &spawner{s: sp.s}
		child.open.Store(true)

		start := time.Now()
		err := sp.s.exec(info, func(ctx context.Context) error {
			if sp.s.cfg.onStart != nil {
				sp.s.cfg.onStart(info)
			}
			return fn(ctx, child)
		})
		elapsed := time.Since(start)

		child.close()

		if sp.s.cfg.onDone != nil {
			sp.s.cfg.onDone(info, err, elapsed)
		}

		if err != nil {
			sp.s.recordError(info, err)
		}
	}()
}

func (sp *spawner) close() {
	sp.open.Store(false)
}
