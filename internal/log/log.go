// Package log provides structured logging for voice-bridge on top of slog.
// The level is adjustable at startup and every session derives a child
// logger carrying its correlation id via With.
package log

import (
	"log/slog"
	"os"
)

// FormatJSON selects the JSON handler, for deployments whose log pipeline
// indexes per-call fields. Anything else means human-readable text.
const FormatJSON = "json"

var (
	level  = new(slog.LevelVar) // defaults to info
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
)

// Init applies the configured level and output format. level accepts the
// slog level names (debug, info, warn, error, any case); an unknown value
// leaves the current level unchanged (info until first set). Calling Init
// again reconfigures the process logger.
func Init(levelName, format string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(levelName)); err == nil {
		level.Set(lvl)
	}
	if format == FormatJSON {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	slog.SetDefault(logger)
}

// L returns the process logger.
func L() *slog.Logger {
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// With returns a logger with the given attributes. Sessions use this to
// stamp every line with their correlation id.
func With(args ...any) *slog.Logger {
	return logger.With(args...)
}
