package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/capstan/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Execute(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("echo", func(ctx context.Context, args map[string]any) (any, error) {
		return args["msg"], nil
	})

	out, err := r.Execute(context.Background(), "echo", map[string]any{"msg": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	_, err = r.Execute(context.Background(), "missing", nil)
	assert.True(t, errors.Is(err, registry.ErrActionNotFound))
}

func TestRegistry_OverwriteAndNames(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("b", func(ctx context.Context, args map[string]any) (any, error) { return 1, nil })
	r.Register("a", func(ctx context.Context, args map[string]any) (any, error) { return 1, nil })
	r.Register("b", func(ctx context.Context, args map[string]any) (any, error) { return 2, nil })

	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("c"))

	out, err := r.Execute(context.Background(), "b", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out)
}
