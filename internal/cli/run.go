package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/capstan/internal/presentation/graph"
	"github.com/aretw0/capstan/internal/presentation/tui"
	"github.com/aretw0/capstan/pkg/domain"
)

// RunOptions contains the configuration of the run command.
type RunOptions struct {
	Options
	Tasks []string
	// GraphOut, when set, receives a Mermaid graph of the recipe with the run overlaid.
	GraphOut string
	Quiet    bool
}

// RunTasks executes the requested tasks as one run, stopping at the first failure.
func RunTasks(ctx context.Context, opts RunOptions, stdout, stderr io.Writer) error {
	if len(opts.Tasks) == 0 {
		return errors.New("no task given")
	}

	logger, err := createLogger(opts.Options, stderr)
	if err != nil {
		return err
	}

	overlay := &graph.GraphOverlay{}
	engine, err := createEngine(opts.Options, logger, stdout, runHooks(opts, stdout, overlay))
	if err != nil {
		return err
	}

	runErr := engine.Run(ctx, opts.Tasks...)

	if opts.GraphOut != "" {
		mermaid := graph.GenerateMermaid(engine.Root(), overlay)
		if err := os.WriteFile(opts.GraphOut, []byte(mermaid), 0o644); err != nil {
			return errors.Join(runErr, fmt.Errorf("failed to write graph: %w", err))
		}
	}

	if isInterrupted(runErr) && !opts.Quiet {
		printSystemMessage(stdout, "Interrupted.")
	}
	return runErr
}

// runHooks reports top-level task outcomes and collects the overlay of the run.
func runHooks(opts RunOptions, w io.Writer, overlay *graph.GraphOverlay) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTaskStart: func(ctx context.Context, e *domain.TaskEvent) {
			overlay.ExecutedTasks = append(overlay.ExecutedTasks, e.Task)
		},
		OnTaskFinish: func(ctx context.Context, e *domain.TaskEvent) {
			// The innermost failure is reported first; keep it.
			if e.Err != nil && overlay.FailedTask == "" {
				overlay.FailedTask = e.Task
			}
			if e.Depth != 1 || opts.Quiet {
				return
			}
			if e.Err != nil {
				fmt.Fprintln(w, tui.Failure(e.Task, e.Err))
			} else {
				fmt.Fprintln(w, tui.Success(e.Task))
			}
		},
	}
}
