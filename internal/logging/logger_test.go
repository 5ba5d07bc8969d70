package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/aretw0/capstan/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":     slog.LevelDebug,
		"INFO":      slog.LevelInfo,
		"":          slog.LevelInfo,
		"important": logging.LevelImportant,
		"warning":   slog.LevelWarn,
		"error":     slog.LevelError,
	}
	for in, want := range cases {
		got, err := logging.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := logging.ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWithWriter_ImportantLevelName(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelInfo)

	logger.Log(t.Context(), logging.LevelImportant, "rolling back", "error", "boom")

	out := buf.String()
	assert.Contains(t, out, "level=IMPORTANT")
	assert.Contains(t, out, "err=boom")
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv(logging.EnvLevel, "debug")
	assert.Equal(t, slog.LevelDebug, logging.LevelFromEnv(slog.LevelInfo))

	t.Setenv(logging.EnvLevel, "nonsense")
	assert.Equal(t, slog.LevelWarn, logging.LevelFromEnv(slog.LevelWarn))
}
