package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New initializes the process logger on stderr.
// devMode enables human-readable console output and debug level.
func New(devMode bool, process string) zerolog.Logger {
	return NewWithWriter(os.Stderr, devMode, process)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, devMode bool, process string) zerolog.Logger {
	level := zerolog.InfoLevel
	if devMode {
		// Human-readable output for local development
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("process", process).
		Logger()
}
