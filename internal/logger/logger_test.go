package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.WarnLevel,
		"debug":   zerolog.DebugLevel,
		" INFO ":  zerolog.InfoLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
		"verbose": zerolog.WarnLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), "level %q", in)
	}
}

func TestInitWithOptionsWritesFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	path := filepath.Join(t.TempDir(), "deck.log")

	log, err := InitWithOptions(path, false)
	require.NoError(t, err)
	log.Info().Str("deck", "x").Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"deck":"x"`)

	_, err = InitWithOptions(filepath.Join(t.TempDir(), "missing", "deck.log"), false)
	assert.Error(t, err)
}
