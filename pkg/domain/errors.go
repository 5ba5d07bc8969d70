package domain

import (
	"errors"
	"fmt"
)

// ErrTaskNotFound matches every *TaskNotFoundError through errors.Is.
var ErrTaskNotFound = errors.New("no such task")

// ErrNoActiveTask is returned when a transaction or rollback is requested outside of a task.
var ErrNoActiveTask = errors.New("no active task")

// ErrInvalidArgument is returned for missing or malformed arguments, e.g. a nil transaction body.
var ErrInvalidArgument = errors.New("invalid argument")

// TaskNotFoundError is returned when a task cannot be resolved in a namespace.
type TaskNotFoundError struct {
	Name string
	// Namespace is the qualified path of the namespace searched. It is empty for the root.
	Namespace string
}

func (e *TaskNotFoundError) Error() string {
	if e.Namespace == "" {
		return fmt.Sprintf("no such task `%s'", e.Name)
	}
	return fmt.Sprintf("no such task `%s' in `%s'", e.Name, e.Namespace)
}

// Is makes errors.Is(err, ErrTaskNotFound) hold.
func (e *TaskNotFoundError) Is(target error) bool {
	return target == ErrTaskNotFound
}

// RollbackError describes a compensation that failed during a rollback sweep.
// It is reported to the log and to LifecycleHooks, never returned to callers.
type RollbackError struct {
	Task string
	Err  error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("exception while rolling back %s: %T, %v", e.Task, e.Err, e.Err)
}

func (e *RollbackError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking compensation.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
