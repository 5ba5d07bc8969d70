package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
)

// ErrActionNotFound is returned by Execute for unregistered names.
var ErrActionNotFound = errors.New("action not found")

// ActionFunction defines the signature for a Go action callable from recipes.
// It receives a context and a map of arguments, and returns a result or error.
type ActionFunction func(ctx context.Context, args map[string]any) (any, error)

// Registry manages the available actions. It is safe for concurrent use, so one
// registry can back several engines.
type Registry struct {
	actions *xsync.MapOf[string, ActionFunction]
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: xsync.NewMapOf[string, ActionFunction](),
	}
}

// Register adds an action to the registry.
// If an action with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn ActionFunction) {
	r.actions.Store(name, fn)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.actions.Load(name)
	return ok
}

// Names returns the registered action names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.actions.Size())
	r.actions.Range(func(name string, _ ActionFunction) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// Execute looks up an action by name and executes it.
// Returns an error wrapping ErrActionNotFound if the action is not registered.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	fn, ok := r.actions.Load(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActionNotFound, name)
	}
	return fn(ctx, args)
}
