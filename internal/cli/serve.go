package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	httpAdapter "github.com/aretw0/capstan/pkg/adapters/http"
	redisAdapter "github.com/aretw0/capstan/pkg/adapters/redis"
	"github.com/aretw0/capstan/pkg/lock"
	"github.com/aretw0/capstan/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// ServeOptions contains the configuration of the serve command.
type ServeOptions struct {
	Options
	Port string
	// Listener overrides Port, mainly for tests.
	Listener net.Listener
	// Ready, if set, is closed once the server accepts connections.
	Ready chan<- string
}

const shutdownTimeout = 5 * time.Second

// Serve exposes the recipe over HTTP until ctx is cancelled.
func Serve(ctx context.Context, opts ServeOptions, stdout, stderr io.Writer) error {
	logger, err := createLogger(opts.Options, stderr)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	engine, err := createEngine(opts.Options, logger, stdout, metrics.Hooks())
	if err != nil {
		return err
	}

	lockOpts := []lock.Option{lock.WithLogger(logger)}
	if opts.RedisURL != "" {
		redisOpts, err := redis.ParseURL(opts.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		client := redis.NewClient(redisOpts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis unreachable: %w", err)
		}
		lockOpts = append(lockOpts, lock.WithLocker(redisAdapter.NewLocker(client, "")))
	}

	handler := httpAdapter.NewHandler(engine,
		httpAdapter.WithLockManager(lock.NewManager(lockOpts...)),
		httpAdapter.WithLockKey(lockKey(opts.LockKey, engine.Name)),
		httpAdapter.WithMetrics(metrics.Handler()),
		httpAdapter.WithLogger(logger),
	)

	ln := opts.Listener
	if ln == nil {
		ln, err = net.Listen("tcp", ":"+opts.Port)
		if err != nil {
			return err
		}
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Serve(ln)
	}()
	printSystemMessage(stdout, "Serving %s on %s", engine.Name, ln.Addr())
	if opts.Ready != nil {
		opts.Ready <- ln.Addr().String()
		close(opts.Ready)
	}

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
		return srv.Close()
	}
	printSystemMessage(stdout, "Server stopped gracefully")
	return nil
}

// lockKey defaults the serialization key to the recipe name so that servers sharing a
// Redis only exclude each other when they deploy the same recipe.
func lockKey(flag, recipe string) string {
	if flag != "" {
		return flag
	}
	if recipe = strings.TrimSpace(recipe); recipe != "" {
		return recipe
	}
	return httpAdapter.DefaultLockKey
}
