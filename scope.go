package csp

import (
	"context"
	"errors"
	"sync"

	"github.com/joeycumines/logiface"
)

// TaskFunc is a task running within a scope. It receives the scope's
// context, cancelled when the scope ends, and a Spawner for sub-tasks.
type TaskFunc func(ctx context.Context, sp Spawner) error

// scope is the state shared by a [Scope] and all of its spawners.
//
// Every composite wait in this package (a [Select] round, the waits of a
// [Mix] loop) runs its branches as tasks of a short-lived scope, then
// cancels and joins that scope before acting on the outcome, so no branch
// outlives the wait that started it.
type scope struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	cfg    config
	log    *logiface.Logger[logiface.Event]

	wg sync.WaitGroup

	errOnce  sync.Once
	firstErr error

	errMu sync.Mutex
	errs  []error

	panicMu sync.Mutex
	panics  []*PanicError

	finOnce  sync.Once
	finErr   error
	finPanic *PanicError
}

// Run creates a scope, calls fn with its root [Spawner], then waits for
// every task to finish. It returns the aggregated error according to the
// configured [Policy] (default [FailFast]).
func Run(parent context.Context, fn func(sp Spawner), opts ...Option) (err error) {
	sc, sp := NewScope(parent, opts...)

	defer func() {
		runPanic := recover()
		sc.root.close()
		waitErr, waitPanic := sc.s.finalize()

		// fn's own panic wins over a task panic.
		if runPanic != nil {
			panic(runPanic)
		}
		if waitPanic != nil {
			panic(waitPanic)
		}
		err = waitErr
	}()

	fn(sp)
	return nil
}

// finalize waits for all tasks and computes the scope's result.
func (s *scope) finalize() (error, *PanicError) {
	s.finOnce.Do(func() {
		s.wg.Wait()

		// Only a cancellation from outside counts against the scope.
		cancelledEarly := s.ctx.Err() != nil && context.Cause(s.ctx) != errScopeCancelled
		s.cancel(errScopeDone)

		if !s.cfg.panicAsErr {
			s.panicMu.Lock()
			if len(s.panics) > 0 {
				s.finPanic = s.panics[0]
			}
			s.panicMu.Unlock()
		}

		switch s.cfg.policy {
		case FailFast:
			s.finErr = s.firstErr
		case Collect:
			s.errMu.Lock()
			s.finErr = errors.Join(s.errs...)
			s.errMu.Unlock()
		}

		if s.finErr == nil && cancelledEarly {
			s.finErr = s.ctx.Err()
		}
	})

	return s.finErr, s.finPanic
}

var (
	errScopeDone      = errors.New("csp: scope finished")
	errScopeCancelled = errors.New("csp: scope cancelled")
)

// exec runs fn with panic recovery.
func (s *scope) exec(info TaskInfo, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			pe := newPanicError(r)
			s.log.Err().
				Str("task", info.Name).
				Any("panic", r).
				Log("task panicked")
			if s.cfg.panicAsErr {
				err = pe
				return
			}
			s.panicMu.Lock()
			s.panics = append(s.panics, pe)
			s.panicMu.Unlock()
			s.cancel(pe)
		}
	}()
	return fn(s.ctx)
}

// recordError records a task error according to the configured policy.
func (s *scope) recordError(info TaskInfo, err error) {
	te := &TaskError{Task: info, Err: err}

	s.log.Debug().
		Str("task", info.Name).
		Err(err).
		Log("task failed")

	switch s.cfg.policy {
	case FailFast:
		s.errOnce.Do(func() {
			s.firstErr = te
			s.cancel(err)
		})
	case Collect:
		s.errMu.Lock()
		s.errs = append(s.errs, te)
		s.errMu.Unlock()
	}
}

// Scope owns a group of tasks sharing one context and one error policy.
// Create one with [NewScope]; finalize it with [Scope.Wait].
type Scope struct {
	s        *scope
	root     *spawner
	once     sync.Once
	result   error
	panicVal *PanicError
}

// NewScope creates a [Scope] and its root [Spawner]. The caller must call
// [Scope.Wait]. Prefer [Run] unless the spawner has to cross function
// boundaries.
func NewScope(parent context.Context, opts ...Option) (*Scope, Spawner) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancelCause(parent)
	s := &scope{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		log:    resolveLogger(cfg.logger),
	}

	root := &spawner{s: s}
	root.open.Store(true)

	return &Scope{s: s, root: root}, root
}

// Wait closes the root [Spawner], waits for all tasks, and returns the
// aggregated error. If a task panicked and [WithPanicAsError] was not set,
// Wait re-panics with the captured [*PanicError].
//
// Wait is idempotent.
func (sc *Scope) Wait() error {
	sc.once.Do(func() {
		sc.root.close()
		sc.result, sc.panicVal = sc.s.finalize()
	})

	if sc.panicVal != nil {
		panic(sc.panicVal)
	}
	return sc.result
}

// Cancel cancels the scope's context, signalling all tasks to stop. A nil
// cause marks the cancellation as the scope's own decision, which
// [Scope.Wait] does not report as an error.
func (sc *Scope) Cancel(cause error) {
	if cause == nil {
		cause = errScopeCancelled
	}
	sc.s.cancel(cause)
}

// Context returns the scope's context.
func (sc *Scope) Context() context.Context {
	return sc.s.ctx
}
