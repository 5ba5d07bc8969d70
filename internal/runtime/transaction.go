package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/capstan/pkg/domain"
)

// InTransaction reports whether a transaction scope is currently open.
func (e *Engine) InTransaction() bool {
	return e.inTransaction
}

// Transaction runs body as a transaction. If body fails, every compensation registered
// through OnRollback since the transaction opened runs in reverse order, then body's
// error is returned unchanged.
//
// A transaction can only be opened from within a task. Opening one while another is
// active runs body inline: nested scopes share the outermost registry.
func (e *Engine) Transaction(ctx context.Context, body domain.TransactionBody) (any, error) {
	if body == nil {
		return nil, fmt.Errorf("%w: expected a transaction body", domain.ErrInvalidArgument)
	}
	if e.frames.len() == 0 {
		return nil, fmt.Errorf("%w: transaction must be called from within a task", domain.ErrNoActiveTask)
	}

	if e.inTransaction {
		return body(ctx)
	}

	owner := e.frames.current().FullyQualifiedName()
	e.logger.InfoContext(ctx, "transaction: start", "task", owner)

	e.inTransaction = true
	e.txSeq++
	e.rollbackRequests = []*CallFrame{}
	defer func() {
		e.inTransaction = false
		e.rollbackRequests = nil
	}()
	e.emitTransaction(ctx, e.hooks.OnTransactionStart, domain.EventTransactionStart, owner, nil)

	result, err := body(ctx)
	if err != nil {
		e.emitTransaction(ctx, e.hooks.OnTransactionRollback, domain.EventTransactionRollback, owner, err)
		e.rollback(ctx)
		return nil, err
	}

	e.logger.InfoContext(ctx, "transaction: commit", "task", owner)
	e.emitTransaction(ctx, e.hooks.OnTransactionCommit, domain.EventTransactionCommit, owner, nil)
	return result, nil
}

// OnRollback attaches fn as the compensation of the currently executing task, replacing
// any earlier one. When a transaction is open the task is enlisted in that transaction's
// registry, once; otherwise fn is only kept on the frame and never runs.
func (e *Engine) OnRollback(fn domain.RollbackFunc) error {
	if fn == nil {
		return fmt.Errorf("%w: expected a rollback action", domain.ErrInvalidArgument)
	}
	frame := e.frames.top()
	if frame == nil {
		return fmt.Errorf("%w: on_rollback must be called from within a task", domain.ErrNoActiveTask)
	}

	frame.attach(fn)
	if e.inTransaction && frame.enlistedIn != e.txSeq {
		frame.enlistedIn = e.txSeq
		e.rollbackRequests = append(e.rollbackRequests, frame)
	}
	return nil
}

func (e *Engine) emitTransaction(ctx context.Context, hook func(context.Context, *domain.TransactionEvent), typ domain.EventType, owner string, err error) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.TransactionEvent{
		EventBase:     e.eventBase(typ),
		Task:          owner,
		Compensations: len(e.rollbackRequests),
		Err:           err,
	})
}
