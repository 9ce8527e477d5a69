// Package log is a thin slog facade writing text records to stderr.
package log

import (
	"io"
	"log/slog"
	"os"
)

var logger = newLogger(os.Stderr, slog.LevelWarn)

func newLogger(w io.Writer, lvl slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// Anything else is warn.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Init sets the level and destination. A nil w means stderr.
func Init(level string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	logger = newLogger(w, ParseLevel(level))
}

func Debug(msg string, args ...any) { logger.Debug(msg, args...) }
func Info(msg string, args ...any)  { logger.Info(msg, args...) }
func Warn(msg string, args ...any)  { logger.Warn(msg, args...) }
func Error(msg string, args ...any) { logger.Error(msg, args...) }
