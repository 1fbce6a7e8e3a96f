package shared

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel resolves a configured level name. debug overrides it.
func ParseLevel(name string, debug bool) (zerolog.Level, error) {
	if debug {
		return zerolog.DebugLevel, nil
	}
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// SetupLogger configures zerolog with pretty console output
func SetupLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// SetupStructuredLogger configures zerolog for JSON output
func SetupStructuredLogger(level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	return zerolog.New(os.Stderr).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewLogger picks the console or JSON logger.
func NewLogger(level zerolog.Level, jsonOutput bool) zerolog.Logger {
	if jsonOutput {
		return SetupStructuredLogger(level)
	}
	return SetupLogger(level)
}
