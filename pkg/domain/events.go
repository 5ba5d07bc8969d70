package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTaskStart           EventType = "task_start"
	EventTaskFinish          EventType = "task_finish"
	EventTransactionStart    EventType = "transaction_start"
	EventTransactionCommit   EventType = "transaction_commit"
	EventTransactionRollback EventType = "transaction_rollback"
	EventRollbackAction      EventType = "rollback_action"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
}

// TaskEvent represents entry into or exit from a task body.
type TaskEvent struct {
	EventBase
	Task     string        `json:"task"`
	Depth    int           `json:"depth"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// TransactionEvent represents a transaction boundary.
type TransactionEvent struct {
	EventBase
	// Task is the task that opened the transaction.
	Task string `json:"task"`
	// Compensations is the number of registered rollbacks at the time of the event.
	Compensations int   `json:"compensations"`
	Err           error `json:"-"`
}

// RollbackEvent represents one compensation run by the rollback sweep.
type RollbackEvent struct {
	EventBase
	Task string `json:"task"`
	Err  error  `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Nil fields are skipped.
type LifecycleHooks struct {
	OnTaskStart           func(context.Context, *TaskEvent)
	OnTaskFinish          func(context.Context, *TaskEvent)
	OnTransactionStart    func(context.Context, *TransactionEvent)
	OnTransactionCommit   func(context.Context, *TransactionEvent)
	OnTransactionRollback func(context.Context, *TransactionEvent)
	OnRollbackAction      func(context.Context, *RollbackEvent)
}

// MergeHooks fans every event out to each of the given hook sets, in order.
func MergeHooks(all ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range all {
		merged.OnTaskStart = chain(merged.OnTaskStart, h.OnTaskStart)
		merged.OnTaskFinish = chain(merged.OnTaskFinish, h.OnTaskFinish)
		merged.OnTransactionStart = chain(merged.OnTransactionStart, h.OnTransactionStart)
		merged.OnTransactionCommit = chain(merged.OnTransactionCommit, h.OnTransactionCommit)
		merged.OnTransactionRollback = chain(merged.OnTransactionRollback, h.OnTransactionRollback)
		merged.OnRollbackAction = chain(merged.OnRollbackAction, h.OnRollbackAction)
	}
	return merged
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev E) {
		a(ctx, ev)
		b(ctx, ev)
	}
}
