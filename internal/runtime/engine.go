package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/capstan/internal/logging"
	"github.com/aretw0/capstan/pkg/domain"
)

// Engine is the task execution core.
// It owns the call stack and the transaction state for its whole life.
type Engine struct {
	frames callStack

	// rollbackRequests holds, in registration order, the frames that attached a
	// compensation while the current transaction was open.
	rollbackRequests []*CallFrame
	inTransaction    bool
	// txSeq numbers the outermost transactions opened so far.
	txSeq uint64

	logger *slog.Logger
	hooks  domain.LifecycleHooks
	runID  string
}

var _ domain.Executor = (*Engine)(nil)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger used for dispatch and transaction events.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithRunID tags every emitted event with the given run identifier.
func WithRunID(id string) EngineOption {
	return func(e *Engine) {
		e.runID = id
	}
}

// NewEngine creates an engine with an empty call stack and no open transaction.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CurrentTask returns the task being executed, or nil when the stack is empty.
func (e *Engine) CurrentTask() *domain.Task {
	return e.frames.current()
}

// Depth returns the number of active call frames.
func (e *Engine) Depth() int {
	return e.frames.len()
}

// CallStack returns the active tasks, outermost first. The last element is the current task,
// the one before it its caller.
func (e *Engine) CallStack() []*domain.Task {
	tasks := make([]*domain.Task, len(e.frames.frames))
	for i, f := range e.frames.frames {
		tasks[i] = f.Task
	}
	return tasks
}

// Execute runs the task called name in ns, preceded by "before_<name>" and followed by
// "after_<name>" when those exist in the same namespace.
//
// A missing task is an error unless failSilently is set. The after hook is skipped when
// the body fails, and body errors are returned unchanged.
func (e *Engine) Execute(ctx context.Context, name string, ns *domain.Namespace, failSilently bool) (any, error) {
	if ns == nil {
		return nil, fmt.Errorf("%w: nil namespace", domain.ErrInvalidArgument)
	}

	task, ok := ns.Lookup(name)
	if !ok {
		if failSilently {
			return nil, nil
		}
		notFound := &domain.TaskNotFoundError{Name: name}
		if ns.Parent() != nil {
			notFound.Namespace = ns.FullyQualifiedName()
		}
		return nil, notFound
	}

	if _, err := e.Execute(ctx, domain.BeforeHookPrefix+name, ns, true); err != nil {
		return nil, err
	}

	e.logger.DebugContext(ctx, "executing task", "task", task.FullyQualifiedName())

	result, err := e.invoke(ctx, task)
	if err != nil {
		return nil, err
	}

	if _, err := e.Execute(ctx, domain.AfterHookPrefix+name, ns, true); err != nil {
		return nil, err
	}
	return result, nil
}

// invoke evaluates the task body inside its own frame.
// The frame is popped on every exit path, panics included.
func (e *Engine) invoke(ctx context.Context, task *domain.Task) (result any, err error) {
	e.frames.push(task)
	depth := e.frames.len()
	start := time.Now()
	e.emitTask(ctx, e.hooks.OnTaskStart, domain.EventTaskStart, task, depth, 0, nil)

	returned := false
	defer func() {
		e.frames.pop()
		if returned {
			e.emitTask(ctx, e.hooks.OnTaskFinish, domain.EventTaskFinish, task, depth, time.Since(start), err)
		}
	}()

	result, err = task.Body(ctx, e)
	returned = true
	return result, err
}

func (e *Engine) emitTask(ctx context.Context, hook func(context.Context, *domain.TaskEvent), typ domain.EventType, task *domain.Task, depth int, d time.Duration, err error) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.TaskEvent{
		EventBase: e.eventBase(typ),
		Task:      task.FullyQualifiedName(),
		Depth:     depth,
		Duration:  d,
		Err:       err,
	})
}

func (e *Engine) eventBase(typ domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      typ,
		RunID:     e.runID,
	}
}
