package csp

import (
	"time"

	"github.com/joeycumines/logiface"
)

// Policy determines how a [Scope] handles errors from its tasks.
type Policy int

const (
	// FailFast cancels all sibling tasks when the first error occurs.
	// [Scope.Wait] returns the first error encountered.
	FailFast Policy = iota

	// Collect gathers all errors without cancelling siblings.
	// [Scope.Wait] returns all errors joined via [errors.Join].
	Collect
)

// TaskInfo describes a task, for hooks and [TaskError].
type TaskInfo struct {
	Name string
}

type config struct {
	policy     Policy
	panicAsErr bool
	onStart    func(TaskInfo)
	onDone     func(TaskInfo, error, time.Duration)
	logger     *logiface.Logger[logiface.Event]
}

// Option configures a [Scope].
type Option func(*config)

func defaultConfig() config {
	return config{
		policy: FailFast,
	}
}

// WithPolicy sets the error handling policy for the scope.
// It panics if p is not a known Policy value.
func WithPolicy(p Policy) Option {
	return func(c *config) {
		switch p {
		case FailFast, Collect:
			c.policy = p
		default:
			panic("csp: invalid policy")
		}
	}
}

// WithPanicAsError converts task panics to [*PanicError] values returned
// as regular errors, instead of re-raising them in [Scope.Wait].
func WithPanicAsError() Option {
	return func(c *config) {
		c.panicAsErr = true
	}
}

// WithOnStart registers a hook invoked in the task's goroutine right
// before the task function runs.
func WithOnStart(fn func(TaskInfo)) Option {
	return func(c *config) {
		c.onStart = fn
	}
}

// WithOnDone registers a hook invoked in the task's goroutine after the
// task function returns, with its error and wall-clock duration.
func WithOnDone(fn func(TaskInfo, error, time.Duration)) Option {
	return func(c *config) {
		c.onDone = fn
	}
}

// WithLogger sets the logger for task failures and panics. Scopes without
// one use the package logger, see [SetLogger].
func WithLogger(l *logiface.Logger[logiface.Event]) Option {
	return func(c *config) {
		c.logger = l
	}
}
