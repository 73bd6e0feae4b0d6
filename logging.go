package csp

import (
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

var defaultLogger atomic.Pointer[logiface.Logger[logiface.Event]]

// SetLogger installs the package-wide logger used by scopes, [Select] and
// [Mix] values that were not given a logger of their own. A nil logger
// disables logging, which is also the initial state.
func SetLogger(l *logiface.Logger[logiface.Event]) {
	defaultLogger.Store(l)
}

// Logger returns the logger installed by [SetLogger], possibly nil. A nil
// logger is safe to use: every builder it returns is disabled.
func Logger() *logiface.Logger[logiface.Event] {
	return defaultLogger.Load()
}

func resolveLogger(l *logiface.Logger[logiface.Event]) *logiface.Logger[logiface.Event] {
	if l != nil {
		return l
	}
	return Logger()
}
