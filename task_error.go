package csp

import (
	"errors"
	"fmt"
)

// TaskError attributes an error to the task that returned it. Every error
// recorded by a [Scope] is wrapped in one.
type TaskError struct {
	Task TaskInfo
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("csp: task %q: %v", e.Task.Name, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// TaskOf returns the [TaskInfo] of the first [*TaskError] in err's chain.
func TaskOf(err error) (TaskInfo, bool) {
	var te *TaskError
	if errors.As(err, &te) {
		return te.Task, true
	}
	return TaskInfo{}, false
}

// CauseOf strips the first [*TaskError] from err's chain and returns what
// the task actually returned. Any other error is returned unchanged.
func CauseOf(err error) error {
	var te *TaskError
	if errors.As(err, &te) {
		return te.Err
	}
	return err
}
