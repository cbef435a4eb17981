package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Logger is the logging interface used across spawn-go.
type Logger interface {
	Info(msg string, obj any)
	Warn(msg string, obj any)
	Debug(msg string, obj any)
	Error(msg string, obj any)
}

// Fields is the usual payload for structured log lines.
type Fields = map[string]any

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps debug/info/warn/error to a Level. Unknown names map to info.
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

// NopLogger discards all log messages.
type NopLogger struct{}

func (NopLogger) Info(string, any)  {}
func (NopLogger) Warn(string, any)  {}
func (NopLogger) Debug(string, any) {}
func (NopLogger) Error(string, any) {}

type writerLogger struct {
	mu        *sync.Mutex
	w         io.Writer
	component string
	min       Level
}

// NewWriterLogger builds a logger that writes every level to w.
func NewWriterLogger(w io.Writer) Logger {
	return New(w, "", LevelDebug)
}

// New builds a logger writing lines of the form
// "<RFC3339> <LEVEL> [component] msg obj=<json>" for levels at or above min.
func New(w io.Writer, component string, min Level) Logger {
	return writerLogger{mu: &sync.Mutex{}, w: w, component: component, min: min}
}

func (l writerLogger) write(level Level, name, msg string, obj any) {
	if l.w == nil || level < l.min {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, " %-5s ", name)
	if l.component != "" {
		fmt.Fprintf(&b, "[%s] ", l.component)
	}
	b.WriteString(msg)
	if obj != nil {
		payload, err := json.Marshal(obj)
		if err != nil {
			fmt.Fprintf(&b, " obj=%q", fmt.Sprintf("%+v", obj))
		} else {
			fmt.Fprintf(&b, " obj=%s", payload)
		}
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.w, b.String())
}

func (l writerLogger) Info(msg string, obj any)  { l.write(LevelInfo, "INFO", msg, obj) }
func (l writerLogger) Warn(msg string, obj any)  { l.write(LevelWarn, "WARN", msg, obj) }
func (l writerLogger) Debug(msg string, obj any) { l.write(LevelDebug, "DEBUG", msg, obj) }
func (l writerLogger) Error(msg string, obj any) { l.write(LevelError, "ERROR", msg, obj) }

// Debug writes a debug log when enabled and logger is non-nil.
func Debug(enabled bool, logger Logger, msg string, obj any) {
	if !enabled || logger == nil {
		return
	}
	logger.Debug(msg, obj)
}

// Debugf is a format-style variant of Debug.
func Debugf(enabled bool, logger Logger, format string, args ...any) {
	Debug(enabled, logger, fmt.Sprintf(format, args...), nil)
}

// Info writes an info log when logger is non-nil.
func Info(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Info(msg, obj)
}

// Warn writes a warning log when logger is non-nil.
func Warn(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Warn(msg, obj)
}

// Error writes an error log when logger is non-nil.
func Error(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Error(msg, obj)
}
