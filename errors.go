package csp

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrInvalidArgument reports a call that violates an argument contract:
	// a non-positive buffer size, a nil buffer, a malformed [Mix.Toggle]
	// call, or an unknown [PriorityMode].
	ErrInvalidArgument = errors.New("csp: invalid argument")

	// ErrInvalidValue reports an attempt to add the no-value sentinel (nil)
	// to a channel.
	ErrInvalidValue = errors.New("csp: nil is not allowed on a channel")

	// ErrProhibitedOperation is matched by every [*ProhibitedOperationError].
	ErrProhibitedOperation = errors.New("csp: prohibited operation")
)

// Distinct [Mix.Toggle] failures. All of them wrap [ErrInvalidArgument].
var (
	ErrNoArguments         = fmt.Errorf("%w: no arguments", ErrInvalidArgument)
	ErrOddArguments        = fmt.Errorf("%w: odd number of arguments", ErrInvalidArgument)
	ErrNotChannel          = fmt.Errorf("%w: not a channel", ErrInvalidArgument)
	ErrNotFlags            = fmt.Errorf("%w: not a flag set", ErrInvalidArgument)
	ErrUnknownFlag         = fmt.Errorf("%w: unknown flag", ErrInvalidArgument)
	ErrInvalidPriorityMode = fmt.Errorf("%w: invalid priority mode", ErrInvalidArgument)
)

// ProhibitedOperationError is the panic value raised by a shielded channel
// when one of its blocked operations is called outside of silent mode.
type ProhibitedOperationError struct {
	// Op names the blocked operation, e.g. "close" or "take".
	Op string
}

func (e *ProhibitedOperationError) Error() string {
	return fmt.Sprintf("csp: prohibited operation: %s", e.Op)
}

// Is makes errors.Is(err, ErrProhibitedOperation) hold.
func (e *ProhibitedOperationError) Is(target error) bool {
	return target == ErrProhibitedOperation
}

// isNil reports whether v is the no-value sentinel. Nil slices are ordinary
// empty slices and stay valid payloads.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// IsValue reports whether v may be added to a channel, that is whether it
// is anything other than nil.
func IsValue[T any](v T) bool {
	return !isNil(v)
}

func mustBeValue[T any](v T) {
	if isNil(v) {
		panic(ErrInvalidValue)
	}
}
