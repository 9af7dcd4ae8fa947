// Package logging provides leveled, structured logging for vtmux.
//
// Logs go to a file or are discarded. They never go to the terminal
// being drawn, since any stray byte there corrupts the display.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Level is the severity of a log message.
type Level int

const (
	// LevelDebug is for detailed debugging information.
	LevelDebug Level = iota
	// LevelInfo is for general informational messages.
	LevelInfo
	// LevelWarn is for recoverable problems.
	LevelWarn
	// LevelError is for failures.
	LevelError
)

// String returns the upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel parses a level name. Unknown names yield LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Config configures a Logger.
type Config struct {
	// Level is the minimum level written.
	Level Level
	// Output receives log lines. Nil discards everything.
	Output io.Writer
}

// Logger is a leveled logger with persistent fields.
// It is safe for concurrent use.
type Logger struct {
	slog *slog.Logger
}

// New returns a logger writing text records to cfg.Output.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		return Nop()
	}
	h := slog.NewTextHandler(cfg.Output, &slog.HandlerOptions{Level: cfg.Level.slog()})
	return &Logger{slog: slog.New(h)}
}

// Nop returns a logger that discards all output.
func Nop() *Logger {
	return &Logger{slog: slog.New(slog.DiscardHandler)}
}

// OpenFile opens path for appending, creating parent directories.
// An empty path returns a nil writer.
func OpenFile(path string) (io.WriteCloser, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// WithField returns a logger that adds key=value to every record.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{slog: l.slog.With(key, value)}
}

// WithFields returns a logger that adds every entry of fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, 2*len(fields))
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{slog: l.slog.With(args...)}
}

// WithComponent returns a logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// Debug logs a debug message. Args format msg as with fmt.Sprintf.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(LevelDebug, msg, args)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(LevelInfo, msg, args)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(LevelWarn, msg, args)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(LevelError, msg, args)
}

func (l *Logger) log(level Level, msg string, args []any) {
	ctx := context.Background()
	if !l.slog.Enabled(ctx, level.slog()) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.slog.Log(ctx, level.slog(), msg)
}
