package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/capstan/pkg/domain"
	"github.com/aretw0/capstan/pkg/recipe"
)

// Builder accumulates task declarations.
type Builder struct {
	env   map[string]string
	tasks map[string]*TaskBuilder
	descs map[string]string
	order []string
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{
		env:   make(map[string]string),
		tasks: make(map[string]*TaskBuilder),
		descs: make(map[string]string),
	}
}

// Env sets a variable exported to every command of the recipe.
func (b *Builder) Env(key, value string) *Builder {
	b.env[key] = value
	return b
}

// Namespace describes the namespace at path ("deploy:web").
func (b *Builder) Namespace(path, description string) *Builder {
	b.descs[path] = description
	return b
}

// Task declares the task at path, creating intermediate namespaces as needed.
// If the task already exists, it returns the existing builder.
func (b *Builder) Task(path string) *TaskBuilder {
	if tb, ok := b.tasks[path]; ok {
		return tb
	}
	tb := &TaskBuilder{}
	b.tasks[path] = tb
	b.order = append(b.order, path)
	return tb
}

// Build assembles the recipe.
func (b *Builder) Build() (*recipe.Recipe, error) {
	r := &recipe.Recipe{
		Tasks:      make(map[string]recipe.TaskSpec),
		Namespaces: make(map[string]recipe.NamespaceSpec),
	}
	if len(b.env) > 0 {
		r.Env = b.env
	}

	for path, desc := range b.descs {
		parts, err := split(path)
		if err != nil {
			return nil, err
		}
		setNamespace(r.Namespaces, parts, func(ns *recipe.NamespaceSpec) {
			ns.Desc = desc
		})
	}

	for _, path := range b.order {
		parts, err := split(path)
		if err != nil {
			return nil, err
		}
		spec := b.tasks[path].spec
		name := parts[len(parts)-1]
		if len(parts) == 1 {
			r.Tasks[name] = spec
			continue
		}
		setNamespace(r.Namespaces, parts[:len(parts)-1], func(ns *recipe.NamespaceSpec) {
			if ns.Tasks == nil {
				ns.Tasks = make(map[string]recipe.TaskSpec)
			}
			ns.Tasks[name] = spec
		})
	}
	return r, nil
}

func split(path string) ([]string, error) {
	parts := strings.Split(path, domain.Separator)
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: malformed path %q", domain.ErrInvalidArgument, path)
		}
	}
	return parts, nil
}

// setNamespace walks (and creates) the namespace chain in m and applies fn to the last one.
// NamespaceSpec is a value type, so each level is written back after modification.
func setNamespace(m map[string]recipe.NamespaceSpec, parts []string, fn func(*recipe.NamespaceSpec)) {
	ns := m[parts[0]]
	if len(parts) == 1 {
		fn(&ns)
	} else {
		if ns.Namespaces == nil {
			ns.Namespaces = make(map[string]recipe.NamespaceSpec)
		}
		setNamespace(ns.Namespaces, parts[1:], fn)
	}
	m[parts[0]] = ns
}

// TaskBuilder provides a fluent API for configuring a task.
type TaskBuilder struct {
	spec recipe.TaskSpec
}

// Desc sets the task description shown in listings.
func (t *TaskBuilder) Desc(description string) *TaskBuilder {
	t.spec.Desc = description
	return t
}

// Run appends shell commands.
func (t *TaskBuilder) Run(commands ...string) *TaskBuilder {
	t.spec.Run = append(t.spec.Run, commands...)
	return t
}

// Call sets the registry action executed by the task.
func (t *TaskBuilder) Call(action string, args map[string]any) *TaskBuilder {
	t.spec.Call = action
	t.spec.With = args
	return t
}

// Invoke appends tasks executed before the task's own call and commands.
func (t *TaskBuilder) Invoke(paths ...string) *TaskBuilder {
	t.spec.Invoke = append(t.spec.Invoke, paths...)
	return t
}

// Transaction wraps the task's steps in a transaction.
func (t *TaskBuilder) Transaction() *TaskBuilder {
	t.spec.Transaction = true
	return t
}

// Rollback appends compensating commands (SAGA pattern) run if an enclosing transaction fails.
func (t *TaskBuilder) Rollback(commands ...string) *TaskBuilder {
	t.spec.Rollback = append(t.spec.Rollback, commands...)
	return t
}

// Env sets a variable for this task's commands only.
func (t *TaskBuilder) Env(key, value string) *TaskBuilder {
	if t.spec.Env == nil {
		t.spec.Env = make(map[string]string)
	}
	t.spec.Env[key] = value
	return t
}
