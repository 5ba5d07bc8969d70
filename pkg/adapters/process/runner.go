package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/capstan/pkg/ports"
)

// DefaultGracePeriod is how long a cancelled command may take to exit after
// being interrupted before it is killed.
const DefaultGracePeriod = 5 * time.Second

// ExecError is returned when a command exits unsuccessfully.
type ExecError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("command %q failed with exit code %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Runner executes shell commands on the local host.
// Each command runs through "sh -c" so recipes can use pipes and expansions.
type Runner struct {
	shell   string
	baseDir string
	env     map[string]string
	output  io.Writer
	grace   time.Duration
}

var _ ports.CommandRunner = (*Runner)(nil)

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithShell replaces the default "sh" interpreter.
func WithShell(shell string) RunnerOption {
	return func(r *Runner) {
		if shell != "" {
			r.shell = shell
		}
	}
}

// WithEnv adds variables to every command. Per-call variables take precedence.
func WithEnv(env map[string]string) RunnerOption {
	return func(r *Runner) {
		for k, v := range env {
			r.env[k] = v
		}
	}
}

// WithOutput mirrors command stdout to w while it is captured.
func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.output = w
	}
}

// WithGracePeriod sets how long an interrupted command may linger before being killed.
func WithGracePeriod(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.grace = d
		}
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		shell: "sh",
		env:   make(map[string]string),
		grace: DefaultGracePeriod,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes command and returns its trimmed stdout.
//
// Cancelling ctx interrupts the process first and kills it once the grace
// period is over.
func (r *Runner) Run(ctx context.Context, command string, env map[string]string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", errors.New("process: empty command")
	}

	cmd := exec.CommandContext(ctx, r.shell, "-c", command)
	cmd.Dir = r.baseDir
	cmd.Env = append(os.Environ(), r.environ(env)...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = r.grace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if r.output != nil {
		cmd.Stdout = io.MultiWriter(&stdout, r.output)
	}
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		execErr := &ExecError{
			Command:  command,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			execErr.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			execErr.Err = ctxErr
		}
		return "", execErr
	}

	return strings.TrimSpace(stdout.String()), nil
}

// environ renders the runner defaults overlaid with the call's variables, in key order.
func (r *Runner) environ(extra map[string]string) []string {
	merged := make(map[string]string, len(r.env)+len(extra))
	for k, v := range r.env {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+merged[k])
	}
	return out
}
