package recipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/aretw0/capstan/internal/logging"
	"github.com/aretw0/capstan/pkg/domain"
	"github.com/aretw0/capstan/pkg/ports"
	"github.com/aretw0/capstan/pkg/registry"
)

// ErrNoRunner is returned when a recipe runs commands but no runner was configured.
var ErrNoRunner = errors.New("recipe: no command runner configured")

// CompileOption configures Compile.
type CompileOption func(*compiler)

// WithRunner sets the runner used for "run" and "rollback" commands.
func WithRunner(r ports.CommandRunner) CompileOption {
	return func(c *compiler) {
		c.runner = r
	}
}

// WithRegistry sets the registry that resolves "call" actions.
func WithRegistry(r *registry.Registry) CompileOption {
	return func(c *compiler) {
		c.registry = r
	}
}

// WithLogger sets the logger used to trace steps.
func WithLogger(l *slog.Logger) CompileOption {
	return func(c *compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRoot compiles into an existing namespace instead of a fresh one.
// Tasks defined in Go code can then be invoked from the recipe and the other way round.
func WithRoot(ns *domain.Namespace) CompileOption {
	return func(c *compiler) {
		if ns != nil {
			c.root = ns
		}
	}
}

type compiler struct {
	root     *domain.Namespace
	runner   ports.CommandRunner
	registry *registry.Registry
	logger   *slog.Logger
	env      map[string]string

	compiled []compiledTask
}

type compiledTask struct {
	ns   *domain.Namespace
	name string
	spec TaskSpec
}

// Compile defines every task of the recipe and returns the root namespace.
//
// References are checked once everything is defined: an "invoke" must name an
// existing task, a "call" a registered action, and commands need a runner.
func (r *Recipe) Compile(opts ...CompileOption) (*domain.Namespace, error) {
	c := &compiler{
		root:   domain.NewNamespace(""),
		logger: logging.NewNop(),
		env:    r.Env,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.defineAll(c.root, r.Tasks, r.Namespaces); err != nil {
		return nil, err
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return c.root, nil
}

func (c *compiler) defineAll(ns *domain.Namespace, tasks map[string]TaskSpec, namespaces map[string]NamespaceSpec) error {
	for _, name := range sortedKeys(tasks) {
		spec := tasks[name]
		if _, err := ns.Define(name, spec.Desc, c.body(ns, name, spec)); err != nil {
			return fmt.Errorf("task %q: %w", qualify(ns, name), err)
		}
		c.compiled = append(c.compiled, compiledTask{ns: ns, name: name, spec: spec})
	}

	for _, name := range sortedKeys(namespaces) {
		spec := namespaces[name]
		if name == "" || strings.Contains(name, domain.Separator) {
			return fmt.Errorf("%w: namespace name %q", domain.ErrInvalidArgument, name)
		}
		child := ns.Namespace(name)
		if spec.Desc != "" {
			child.Description = spec.Desc
		}
		if err := c.defineAll(child, spec.Tasks, spec.Namespaces); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) check() error {
	var errs []error
	for _, ct := range c.compiled {
		fqn := qualify(ct.ns, ct.name)
		for _, path := range ct.spec.Invoke {
			ns, name, err := c.resolve(ct.ns, path)
			if err == nil {
				if _, ok := ns.Lookup(name); !ok {
					err = &domain.TaskNotFoundError{Name: path}
				}
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("task %q: invoke: %w", fqn, err))
			}
		}
		if ct.spec.Call != "" && (c.registry == nil || !c.registry.Has(ct.spec.Call)) {
			errs = append(errs, fmt.Errorf("task %q: %w: %s", fqn, registry.ErrActionNotFound, ct.spec.Call))
		}
		if c.runner == nil && (len(ct.spec.Run) > 0 || len(ct.spec.Rollback) > 0) {
			errs = append(errs, fmt.Errorf("task %q: %w", fqn, ErrNoRunner))
		}
	}
	return errors.Join(errs...)
}

// resolve maps an invoke path to a namespace and task name. A bare name stays in
// the invoking task's namespace, a qualified path starts at the root.
func (c *compiler) resolve(from *domain.Namespace, path string) (*domain.Namespace, string, error) {
	if !strings.Contains(path, domain.Separator) {
		return from, path, nil
	}
	return c.root.Resolve(path)
}

func (c *compiler) body(ns *domain.Namespace, name string, spec TaskSpec) domain.Body {
	fqn := qualify(ns, name)
	env := c.environ(fqn, spec.Env)

	return func(ctx context.Context, x domain.Executor) (any, error) {
		steps := func(ctx context.Context) (any, error) {
			return c.steps(ctx, x, ns, fqn, env, spec)
		}
		if spec.Transaction {
			return x.Transaction(ctx, steps)
		}
		return steps(ctx)
	}
}

// steps runs a task's work: rollback registration first, then invokes, the call and
// the commands. The last step's result is the task's result.
func (c *compiler) steps(ctx context.Context, x domain.Executor, ns *domain.Namespace, fqn string, env map[string]string, spec TaskSpec) (any, error) {
	if len(spec.Rollback) > 0 {
		commands := spec.Rollback
		err := x.OnRollback(func(ctx context.Context) error {
			for _, cmd := range commands {
				if _, err := c.runner.Run(ctx, cmd, env); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	var result any
	for _, path := range spec.Invoke {
		target, name, err := c.resolve(ns, path)
		if err != nil {
			return nil, err
		}
		if result, err = x.Execute(ctx, name, target, false); err != nil {
			return nil, err
		}
	}

	if spec.Call != "" {
		c.logger.DebugContext(ctx, "calling action", "task", fqn, "action", spec.Call)
		out, err := c.registry.Execute(ctx, spec.Call, spec.With)
		if err != nil {
			return nil, err
		}
		result = out
	}

	for _, cmd := range spec.Run {
		c.logger.InfoContext(ctx, "executing command", "task", fqn, "command", cmd)
		out, err := c.runner.Run(ctx, cmd, env)
		if err != nil {
			return nil, err
		}
		result = out
	}
	return result, nil
}

func (c *compiler) environ(fqn string, taskEnv map[string]string) map[string]string {
	env := make(map[string]string, len(c.env)+len(taskEnv)+1)
	for k, v := range c.env {
		env[k] = v
	}
	for k, v := range taskEnv {
		env[k] = v
	}
	env[domain.EnvTaskName] = fqn
	return env
}

func qualify(ns *domain.Namespace, name string) string {
	if prefix := ns.FullyQualifiedName(); prefix != "" {
		return prefix + domain.Separator + name
	}
	return name
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
