package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/capstan/pkg/domain"
)

// LogHooks reports lifecycle events as structured log records.
// Task events are logged at debug level, transaction outcomes at info and
// failed compensations at warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTaskStart: func(ctx context.Context, e *domain.TaskEvent) {
			logger.DebugContext(ctx, "task_start", "run_id", e.RunID, "task", e.Task, "depth", e.Depth)
		},
		OnTaskFinish: func(ctx context.Context, e *domain.TaskEvent) {
			attrs := []any{"run_id", e.RunID, "task", e.Task, "duration", e.Duration}
			if e.Err != nil {
				attrs = append(attrs, "err", e.Err)
			}
			logger.DebugContext(ctx, "task_finish", attrs...)
		},
		OnTransactionRollback: func(ctx context.Context, e *domain.TransactionEvent) {
			logger.InfoContext(ctx, "transaction_rollback",
				"run_id", e.RunID,
				"task", e.Task,
				"compensations", e.Compensations,
				"err", e.Err,
			)
		},
		OnRollbackAction: func(ctx context.Context, e *domain.RollbackEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "rollback_failed", "run_id", e.RunID, "task", e.Task, "err", e.Err)
			}
		},
	}
}
