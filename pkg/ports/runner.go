package ports

import "context"

// CommandRunner executes a single shell command on behalf of a task.
type CommandRunner interface {
	// Run executes command with the extra environment and returns its trimmed stdout.
	Run(ctx context.Context, command string, env map[string]string) (string, error)
}
