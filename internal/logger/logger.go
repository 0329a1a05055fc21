// Package logger provides structured logging using slog for stk-executor.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"
	slogmulti "github.com/samber/slog-multi"
)

var (
	// Default is the default logger instance.
	Default *slog.Logger
)

func init() {
	// Only errors reach the terminal until Init runs, so the menu stays clean.
	Default = slog.New(newConsoleHandler(os.Stderr, slog.LevelError))
}

// Config holds logger configuration.
type Config struct {
	Path    string
	Level   string
	Console bool
	// Writer overrides the console destination (stderr).
	Writer io.Writer
}

// ParseLevel maps a level name onto a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init initializes the logger with the given configuration.
// Console output goes through charmbracelet/log; the optional file gets
// plain slog text records. Both are fanned out from one slog.Logger.
func Init(cfg Config) error {
	level := ParseLevel(cfg.Level)

	var handlers []slog.Handler

	if cfg.Console {
		w := cfg.Writer
		if w == nil {
			w = os.Stderr
		}
		handlers = append(handlers, newConsoleHandler(w, level))
	}

	if cfg.Path != "" {
		// Create log directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return err
		}

		file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		handlers = append(handlers, slog.NewTextHandler(file, &slog.HandlerOptions{Level: level}))
	}

	switch len(handlers) {
	case 0:
		Default = slog.New(slog.NewTextHandler(io.Discard, nil))
	case 1:
		Default = slog.New(handlers[0])
	default:
		Default = slog.New(slogmulti.Fanout(handlers...))
	}
	return nil
}

func newConsoleHandler(w io.Writer, level slog.Level) slog.Handler {
	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(level),
		Prefix:          "stk-executor",
		ReportTimestamp: true,
	})
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Default.Debug(msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	Default.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Default.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Default.Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return Default.With(args...)
}
