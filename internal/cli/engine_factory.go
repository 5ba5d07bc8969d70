package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/capstan"
	"github.com/aretw0/capstan/pkg/domain"
	"github.com/aretw0/capstan/pkg/observability"
)

// DefaultRecipe is the recipe looked up when no --file is given.
const DefaultRecipe = "Capfile.yaml"

// createEngine initializes a capstan engine with standard CLI conventions.
// Extra hooks are merged after the logging hooks.
func createEngine(opts Options, logger *slog.Logger, output io.Writer, hooks ...domain.LifecycleHooks) (*capstan.Engine, error) {
	path, err := resolveRecipe(opts.RecipePath)
	if err != nil {
		return nil, err
	}

	all := append([]domain.LifecycleHooks{observability.LogHooks(logger)}, hooks...)
	engine, err := capstan.New(path,
		capstan.WithLogger(logger),
		capstan.WithLifecycleHooks(domain.MergeHooks(all...)),
		capstan.WithOutput(output),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// resolveRecipe applies the recipe lookup convention: an explicit path is used as is,
// a directory is searched for Capfile.yaml, and an empty path means the current directory.
func resolveRecipe(path string) (string, error) {
	if path == "" {
		path = "."
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("recipe not found: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	for _, name := range []string{DefaultRecipe, "Capfile.yml"} {
		candidate := filepath.Join(path, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no %s found in %s", DefaultRecipe, path)
}
