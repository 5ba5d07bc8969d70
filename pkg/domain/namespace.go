package domain

import (
	"fmt"
	"strings"

	"github.com/tidwall/btree"
)

// Namespace is a node in the task tree. The root namespace has no name and no parent.
//
// Tasks and child namespaces are kept ordered by name so listings are stable.
// A Namespace is built once and then read; it is not safe for concurrent mutation.
type Namespace struct {
	Name        string
	Description string

	parent     *Namespace
	tasks      btree.Map[string, *Task]
	namespaces btree.Map[string, *Namespace]
}

// NewNamespace creates a root namespace.
func NewNamespace(name string) *Namespace {
	return &Namespace{Name: name}
}

// Parent returns the enclosing namespace, or nil for the root.
func (n *Namespace) Parent() *Namespace {
	return n.parent
}

// FullyQualifiedName returns the path of the namespace from the root. The root is "".
func (n *Namespace) FullyQualifiedName() string {
	if n.parent == nil {
		return ""
	}
	return join(n.parent.FullyQualifiedName(), n.Name)
}

// Namespace returns the child namespace with the given name, creating it when absent.
func (n *Namespace) Namespace(name string) *Namespace {
	if child, ok := n.namespaces.Get(name); ok {
		return child
	}
	child := &Namespace{Name: name, parent: n}
	n.namespaces.Set(name, child)
	return child
}

// Child returns an existing child namespace.
func (n *Namespace) Child(name string) (*Namespace, bool) {
	return n.namespaces.Get(name)
}

// Define adds a task to the namespace. A task with the same name is replaced.
func (n *Namespace) Define(name, description string, body Body) (*Task, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: task name is empty", ErrInvalidArgument)
	}
	if strings.Contains(name, Separator) {
		return nil, fmt.Errorf("%w: task name %q contains %q", ErrInvalidArgument, name, Separator)
	}
	if body == nil {
		return nil, fmt.Errorf("%w: task %q has no body", ErrInvalidArgument, name)
	}
	task := &Task{
		Name:        name,
		Description: description,
		Body:        body,
		namespace:   n,
	}
	n.tasks.Set(name, task)
	return task, nil
}

// Lookup finds a task of this namespace by name. Parents are not searched.
func (n *Namespace) Lookup(name string) (*Task, bool) {
	return n.tasks.Get(name)
}

// Tasks returns the tasks of this namespace ordered by name.
func (n *Namespace) Tasks() []*Task {
	tasks := make([]*Task, 0, n.tasks.Len())
	n.tasks.Scan(func(_ string, t *Task) bool {
		tasks = append(tasks, t)
		return true
	})
	return tasks
}

// Namespaces returns the child namespaces ordered by name.
func (n *Namespace) Namespaces() []*Namespace {
	children := make([]*Namespace, 0, n.namespaces.Len())
	n.namespaces.Scan(func(_ string, c *Namespace) bool {
		children = append(children, c)
		return true
	})
	return children
}

// Resolve splits a qualified path ("deploy:web:restart") into the owning namespace and the
// task name, walking down from n. The task itself is not required to exist.
func (n *Namespace) Resolve(path string) (*Namespace, string, error) {
	parts := strings.Split(path, Separator)
	for _, p := range parts {
		if p == "" {
			return nil, "", fmt.Errorf("%w: malformed task path %q", ErrInvalidArgument, path)
		}
	}

	ns := n
	for _, p := range parts[:len(parts)-1] {
		child, ok := ns.Child(p)
		if !ok {
			return nil, "", &TaskNotFoundError{Name: path}
		}
		ns = child
	}
	return ns, parts[len(parts)-1], nil
}

// Walk visits every task depth-first: the tasks of a namespace first, then its children.
// Returning false from fn stops the walk.
func (n *Namespace) Walk(fn func(*Task) bool) bool {
	for _, t := range n.Tasks() {
		if !fn(t) {
			return false
		}
	}
	for _, c := range n.Namespaces() {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}
