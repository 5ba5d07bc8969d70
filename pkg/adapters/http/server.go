package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/capstan"
	"github.com/aretw0/capstan/internal/logging"
	"github.com/aretw0/capstan/pkg/domain"
	"github.com/aretw0/capstan/pkg/lock"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultLockKey serializes every run triggered through the API.
const DefaultLockKey = "run"

// Engine is the part of capstan.Engine the API needs.
type Engine interface {
	Tasks() []*domain.Task
	Lookup(path string) (*domain.Task, error)
	Invoke(ctx context.Context, path string) (any, error)
}

var _ Engine = (*capstan.Engine)(nil)

// Server exposes an Engine over HTTP.
type Server struct {
	Engine  Engine
	Locks   *lock.Manager
	LockKey string
	Metrics http.Handler
	Logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLockManager sets the manager runs are serialized through, e.g. one backed by Redis.
func WithLockManager(m *lock.Manager) Option {
	return func(s *Server) {
		if m != nil {
			s.Locks = m
		}
	}
}

// WithLockKey changes the key runs are serialized on.
func WithLockKey(key string) Option {
	return func(s *Server) {
		if key != "" {
			s.LockKey = key
		}
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{
		Engine:  engine,
		Locks:   lock.NewManager(),
		LockKey: DefaultLockKey,
		Logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/tasks", server.ListTasks)
	r.Post("/tasks/{path}/run", server.RunTask)
	if server.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TaskInfo is the listing entry of a task.
type TaskInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RunResponse reports the outcome of POST /tasks/{path}/run.
type RunResponse struct {
	Task   string `json:"task"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ListTasks handles the GET /tasks request.
func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := s.Engine.Tasks()
	resp := make([]TaskInfo, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, TaskInfo{Name: t.FullyQualifiedName(), Description: t.Description})
	}
	writeJSON(w, http.StatusOK, resp)
}

// RunTask handles the POST /tasks/{path}/run request.
// Runs never overlap: each one holds the server's lock key for its whole duration.
func (s *Server) RunTask(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")

	if _, err := s.Engine.Lookup(path); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrTaskNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, RunResponse{Task: path, Error: err.Error()})
		return
	}

	var result any
	err := s.Locks.WithLock(r.Context(), s.LockKey, func(ctx context.Context) error {
		var runErr error
		result, runErr = s.Engine.Invoke(ctx, path)
		return runErr
	})
	if err != nil {
		s.Logger.ErrorContext(r.Context(), "RunTask failed", "task", path, "err", err)
		writeJSON(w, http.StatusInternalServerError, RunResponse{Task: path, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, RunResponse{Task: path, Result: result})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "capstan-http",
		"version": strings.TrimSpace(capstan.Version),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
