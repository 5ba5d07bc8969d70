package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/capstan"
	"github.com/aretw0/capstan/pkg/domain"
	"github.com/aretw0/capstan/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...capstan.Option) (*capstan.Engine, *domain.Namespace) {
	t.Helper()
	root := domain.NewNamespace("")
	engine, err := capstan.New("", append([]capstan.Option{capstan.WithNamespace(root)}, opts...)...)
	require.NoError(t, err)
	return engine, root
}

func define(t *testing.T, ns *domain.Namespace, name, desc string, body domain.Body) {
	t.Helper()
	_, err := ns.Define(name, desc, body)
	require.NoError(t, err)
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestListTasks(t *testing.T) {
	engine, root := newTestEngine(t)
	define(t, root, "deploy", "Deploy the app", func(ctx context.Context, x domain.Executor) (any, error) { return nil, nil })
	define(t, root.Namespace("deploy"), "migrate", "", func(ctx context.Context, x domain.Executor) (any, error) { return nil, nil })

	w := do(t, NewHandler(engine), http.MethodGet, "/tasks")
	require.Equal(t, http.StatusOK, w.Code)

	var tasks []TaskInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	assert.Equal(t, []TaskInfo{
		{Name: "deploy", Description: "Deploy the app"},
		{Name: "deploy:migrate"},
	}, tasks)
}

func TestRunTask(t *testing.T) {
	engine, root := newTestEngine(t)
	define(t, root.Namespace("deploy"), "migrate", "", func(ctx context.Context, x domain.Executor) (any, error) {
		return "migrated", nil
	})
	define(t, root, "broken", "", func(ctx context.Context, x domain.Executor) (any, error) {
		return nil, errors.New("disk full")
	})
	handler := NewHandler(engine)

	t.Run("success", func(t *testing.T) {
		w := do(t, handler, http.MethodPost, "/tasks/deploy:migrate/run")
		require.Equal(t, http.StatusOK, w.Code)

		var resp RunResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, RunResponse{Task: "deploy:migrate", Result: "migrated"}, resp)
	})

	t.Run("unknown task", func(t *testing.T) {
		w := do(t, handler, http.MethodPost, "/tasks/deploy:rollout/run")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "no such task")
	})

	t.Run("failure", func(t *testing.T) {
		w := do(t, handler, http.MethodPost, "/tasks/broken/run")
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp RunResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "disk full", resp.Error)
	})

	t.Run("wrong method", func(t *testing.T) {
		w := do(t, handler, http.MethodGet, "/tasks/broken/run")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestRunTask_Serialized(t *testing.T) {
	engine, root := newTestEngine(t)
	var active, peak int32
	define(t, root, "deploy", "", func(ctx context.Context, x domain.Executor) (any, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return nil, nil
	})
	handler := NewHandler(engine)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tasks/deploy/run", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&peak), "runs must not overlap")
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := observability.NewMetrics(nil)
	engine, root := newTestEngine(t, capstan.WithLifecycleHooks(metrics.Hooks()))
	define(t, root, "deploy", "", func(ctx context.Context, x domain.Executor) (any, error) { return nil, nil })

	handler := NewHandler(engine, WithMetrics(metrics.Handler()))
	require.Equal(t, http.StatusOK, do(t, handler, http.MethodPost, "/tasks/deploy/run").Code)

	w := do(t, handler, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `capstan_task_executions_total{outcome="success",task="deploy"} 1`)

	t.Run("absent without metrics", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(t, NewHandler(engine), http.MethodGet, "/metrics").Code)
	})
}

func TestHealthAndInfo(t *testing.T) {
	engine, _ := newTestEngine(t)
	handler := NewHandler(engine)

	assert.JSONEq(t, `{"status":"ok"}`, do(t, handler, http.MethodGet, "/health").Body.String())

	var info map[string]string
	require.NoError(t, json.Unmarshal(do(t, handler, http.MethodGet, "/info").Body.Bytes(), &info))
	assert.Equal(t, "capstan-http", info["app"])
	assert.NotEmpty(t, info["version"])
}
