package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/capstan/internal/logging"
	"github.com/aretw0/capstan/pkg/domain"
)

// rollback runs the compensations of the open transaction, last registered first.
// A failing compensation is logged and the sweep moves on to the next one.
func (e *Engine) rollback(ctx context.Context) {
	requests := e.rollbackRequests
	for i := len(requests) - 1; i >= 0; i-- {
		e.compensate(ctx, requests[i])
	}
}

// compensate puts the frame's task back on the stack so the compensation observes the
// same current task as the code that registered it.
func (e *Engine) compensate(ctx context.Context, frame *CallFrame) {
	name := frame.Task.FullyQualifiedName()

	e.frames.push(frame.Task)
	defer e.frames.pop()

	e.logger.Log(ctx, logging.LevelImportant, "rolling back", "task", name)

	var failure error
	if err := callRollback(ctx, frame.Rollback); err != nil {
		failure = &domain.RollbackError{Task: name, Err: err}
		e.logger.InfoContext(ctx, "exception while rolling back",
			"task", name,
			"kind", fmt.Sprintf("%T", err),
			"err", err,
		)
	}

	if hook := e.hooks.OnRollbackAction; hook != nil {
		hook(ctx, &domain.RollbackEvent{
			EventBase: e.eventBase(domain.EventRollbackAction),
			Task:      name,
			Err:       failure,
		})
	}
}

// callRollback isolates a single compensation: a panic is reported as an error so the
// remaining compensations still run.
func callRollback(ctx context.Context, fn domain.RollbackFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.PanicError{Value: r}
		}
	}()
	return fn(ctx)
}
