package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger creates a stderr logger with the given prefix. The level comes
// from LOG_LEVEL (debug, info, warn, error) and defaults to info.
func NewLogger(prefix string) *log.Logger {
	return NewLoggerTo(os.Stderr, prefix, GetEnv("LOG_LEVEL", "info"))
}

// NewLoggerTo creates a logger writing to w. An unknown level falls back to info.
func NewLoggerTo(w io.Writer, prefix, level string) *log.Logger {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
}
