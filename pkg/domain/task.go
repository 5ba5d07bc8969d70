package domain

import "context"

// Body is the work unit of a task. It receives the executing engine so it can dispatch
// sub-tasks, open transactions and register compensations.
type Body func(ctx context.Context, x Executor) (any, error)

// TransactionBody is the block wrapped by Executor.Transaction.
type TransactionBody func(ctx context.Context) (any, error)

// RollbackFunc is a compensation registered by a task through Executor.OnRollback.
type RollbackFunc func(ctx context.Context) error

// Executor is the narrow view of the engine handed to task bodies.
// An Executor is driven by a single goroutine at a time.
type Executor interface {
	// Execute runs the named task of ns, wrapped by its before_/after_ hooks.
	// A missing task is ignored when failSilently is set.
	Execute(ctx context.Context, name string, ns *Namespace, failSilently bool) (any, error)

	// Transaction runs body in a transaction scope. Nested calls join the outermost scope.
	Transaction(ctx context.Context, body TransactionBody) (any, error)

	// OnRollback attaches fn to the currently executing task.
	OnRollback(fn RollbackFunc) error

	// CurrentTask returns the task on top of the call stack, or nil.
	CurrentTask() *Task

	// InTransaction reports whether a transaction scope is open.
	InTransaction() bool
}

// Task is a named unit of deployment work owned by a Namespace.
type Task struct {
	Name        string
	Description string
	Body        Body

	namespace *Namespace
}

// Namespace returns the namespace that owns the task.
func (t *Task) Namespace() *Namespace {
	return t.namespace
}

// FullyQualifiedName returns the task name prefixed with its namespace path.
func (t *Task) FullyQualifiedName() string {
	if t.namespace == nil {
		return t.Name
	}
	return join(t.namespace.FullyQualifiedName(), t.Name)
}

// String implements fmt.Stringer.
func (t *Task) String() string {
	return t.FullyQualifiedName()
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + Separator + name
}
