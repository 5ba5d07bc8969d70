package runtime_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/capstan/internal/logging"
	"github.com/aretw0/capstan/internal/runtime"
	"github.com/aretw0/capstan/pkg/domain"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// recorder collects an ordered trace of what task bodies and compensations did.
type recorder struct {
	calls []string
}

func (r *recorder) add(s string) {
	r.calls = append(r.calls, s)
}

// newEngine returns an engine logging at debug level into a buffer.
func newEngine(t *testing.T, opts ...runtime.EngineOption) (*runtime.Engine, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts = append([]runtime.EngineOption{runtime.WithLogger(logging.NewWithWriter(&buf, slog.LevelDebug))}, opts...)
	return runtime.NewEngine(opts...), &buf
}

func define(t *testing.T, ns *domain.Namespace, name string, body domain.Body) *domain.Task {
	t.Helper()
	task, err := ns.Define(name, "", body)
	require.NoError(t, err)
	return task
}

// record returns a body that appends name to rec and succeeds.
func record(rec *recorder, name string) domain.Body {
	return func(ctx context.Context, x domain.Executor) (any, error) {
		rec.add(name)
		return name, nil
	}
}
