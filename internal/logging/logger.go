package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelImportant sits between Info and Warn. It marks notable events that are not
// problems by themselves, such as a rollback being invoked.
const LevelImportant = slog.LevelInfo + 2

// EnvLevel names the environment variable consulted by LevelFromEnv.
const EnvLevel = "CAPSTAN_LOG_LEVEL"

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout command output).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	// Standardize 'error' key to 'err'
	if a.Key == "error" {
		a.Key = "err"
	}
	if a.Key == slog.LevelKey && len(groups) == 0 {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelImportant {
			a.Value = slog.StringValue("IMPORTANT")
		}
	}
	return a
}

// ParseLevel maps a level name to a slog.Level. Names are case-insensitive.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "important":
		return LevelImportant, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// LevelFromEnv reads EnvLevel, falling back to fallback when unset or invalid.
func LevelFromEnv(fallback slog.Level) slog.Level {
	v, ok := os.LookupEnv(EnvLevel)
	if !ok {
		return fallback
	}
	lvl, err := ParseLevel(v)
	if err != nil {
		return fallback
	}
	return lvl
}
