package capstan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/capstan/internal/logging"
	"github.com/aretw0/capstan/internal/runtime"
	"github.com/aretw0/capstan/pkg/adapters/process"
	"github.com/aretw0/capstan/pkg/domain"
	"github.com/aretw0/capstan/pkg/ports"
	"github.com/aretw0/capstan/pkg/recipe"
	"github.com/aretw0/capstan/pkg/registry"
	"github.com/google/uuid"
)

// Engine is the high-level entry point for the capstan library.
// It holds the task tree and creates a runtime engine for every run.
type Engine struct {
	root     *domain.Namespace
	registry *registry.Registry
	runner   ports.CommandRunner
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	output   io.Writer
	Name     string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithNamespace uses ns as the task tree. When a recipe path is also given, the
// recipe's tasks are compiled into ns.
func WithNamespace(ns *domain.Namespace) Option {
	return func(e *Engine) {
		e.root = ns
	}
}

// WithRegistry sets the actions available to "call" steps.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithRunner replaces the local shell runner used for recipe commands.
func WithRunner(r ports.CommandRunner) Option {
	return func(e *Engine) {
		e.runner = r
	}
}

// WithOutput mirrors command output to w. Ignored when WithRunner is used.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.output = w
	}
}

// New initializes a new Engine from the recipe at recipePath.
// If WithNamespace is provided, recipePath can be empty and no recipe is loaded.
func New(recipePath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.registry == nil {
		eng.registry = registry.NewRegistry()
	}

	if recipePath == "" {
		if eng.root == nil {
			return nil, fmt.Errorf("recipePath is required when no namespace is provided")
		}
		return eng, nil
	}

	absPath, err := filepath.Abs(recipePath)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	eng.Name = strings.TrimSuffix(filepath.Base(absPath), filepath.Ext(absPath))
	eng.logger = eng.logger.With("recipe", eng.Name)

	if eng.runner == nil {
		eng.runner = process.NewRunner(
			process.WithBaseDir(filepath.Dir(absPath)),
			process.WithOutput(eng.output),
		)
	}

	r, err := recipe.Load(absPath)
	if err != nil {
		return nil, err
	}
	root, err := r.Compile(
		recipe.WithRoot(eng.root),
		recipe.WithRunner(eng.runner),
		recipe.WithRegistry(eng.registry),
		recipe.WithLogger(eng.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile recipe: %w", err)
	}
	eng.root = root
	return eng, nil
}

// Root returns the top-level namespace.
func (e *Engine) Root() *domain.Namespace {
	return e.root
}

// Tasks returns every task, namespace by namespace in name order.
func (e *Engine) Tasks() []*domain.Task {
	var tasks []*domain.Task
	e.root.Walk(func(t *domain.Task) bool {
		tasks = append(tasks, t)
		return true
	})
	return tasks
}

// Lookup finds the task at a qualified path such as "deploy:migrate".
func (e *Engine) Lookup(path string) (*domain.Task, error) {
	ns, name, err := e.root.Resolve(path)
	if err != nil {
		return nil, err
	}
	task, ok := ns.Lookup(name)
	if !ok {
		return nil, &domain.TaskNotFoundError{Name: path}
	}
	return task, nil
}

// Run executes the tasks at paths one after the other, stopping at the first failure.
// All of them share a single run: one call stack and one run id.
func (e *Engine) Run(ctx context.Context, paths ...string) error {
	rt, logger := e.newRuntime()
	for _, path := range paths {
		if _, err := e.execute(ctx, rt, logger, path); err != nil {
			return err
		}
	}
	return nil
}

// Invoke executes a single task in a run of its own and returns its result.
func (e *Engine) Invoke(ctx context.Context, path string) (any, error) {
	rt, logger := e.newRuntime()
	return e.execute(ctx, rt, logger, path)
}

func (e *Engine) execute(ctx context.Context, rt *runtime.Engine, logger *slog.Logger, path string) (any, error) {
	ns, name, err := e.root.Resolve(path)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "running task", "task", path)
	result, err := rt.Execute(ctx, name, ns, false)
	if err != nil {
		logger.ErrorContext(ctx, "task failed", "task", path, "err", err)
		return nil, err
	}
	return result, nil
}

func (e *Engine) newRuntime() (*runtime.Engine, *slog.Logger) {
	runID := uuid.NewString()
	logger := e.logger.With("run_id", runID)
	return runtime.NewEngine(
		runtime.WithLogger(logger),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithRunID(runID),
	), logger
}
