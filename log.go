package scatterkit

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with timestamp formatting. The engine's default
// logger writes to io.Discard; callers opt in via Engine.SetLogger.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// NewDebugLogger returns a debug-level logger writing to w, suitable for
// passing to Engine.SetLogger during development.
func NewDebugLogger(w io.Writer) *log.Logger {
	return newLogger(w, log.DebugLevel)
}
