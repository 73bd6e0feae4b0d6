package csp

import (
	"fmt"
	"runtime"
)

// PanicError carries a value recovered from a panicking task, with the
// stack of the goroutine that panicked.
//
// Without [WithPanicAsError], [Scope.Wait] re-panics with the first
// *PanicError; with it, the *PanicError is returned like any task error.
type PanicError struct {
	// Value is the argument passed to panic.
	Value any

	// Stack is the panicking goroutine's stack trace.
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap exposes the panic value when it is itself an error, so a task
// that panics with, say, [ErrInvalidValue] still matches errors.Is.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newPanicError(v any) *PanicError {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{
		Value: v,
		Stack: string(buf[:n]),
	}
}
