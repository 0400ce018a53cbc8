package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// InitWithOptions builds the CLI logger.
// If logFile is empty, logs go to stderr so they never mix with review
// prompts on stdout. If pretty is true, stderr output uses ConsoleWriter.
// Log level can be configured via LOG_LEVEL environment variable (trace,
// debug, info, warn, error); the default is warn.
func InitWithOptions(logFile string, pretty bool) (zerolog.Logger, error) {
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))

	var output io.Writer
	switch {
	case logFile != "":
		//nolint:gosec // G304: User-specified log file path is intentional
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		output = file
	case pretty:
		output = zerolog.ConsoleWriter{Out: os.Stderr}
	default:
		output = os.Stderr
	}

	log := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
	log.Debug().Str("level", level.String()).Bool("file", logFile != "").Msg("Logger initialized")
	return log, nil
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}
