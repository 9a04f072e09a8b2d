// Package obs provides process-wide structured logging built on zerolog.
package obs

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger writing to w at the given level name
// ("debug", "info", "warn", "error"; unrecognized names fall back to info).
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// NewConsole builds a human-readable logger for interactive CLI use,
// writing to stderr so stdout stays reserved for command output.
func NewConsole(level string) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr}, level)
}
