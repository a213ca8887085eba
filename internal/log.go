package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

const slogLevelTrace = slog.LevelDebug - 4

// Logger provides leveled logging
type Logger struct {
	level LogLevel
	out   *slog.Logger
}

// NewLogger creates a new logger writing to stderr at the specified level
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(os.Stderr, level)
}

// NewLoggerWithWriter creates a logger writing to w. Colored output is used
// only when w is a terminal.
func NewLoggerWithWriter(w io.Writer, level LogLevel) *Logger {
	var handler slog.Handler
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		handler = tint.NewHandler(w, &tint.Options{Level: slogLevelTrace, TimeFormat: time.Kitchen})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevelTrace})
	}
	return &Logger{level: level, out: slog.New(handler)}
}

// ParseLogLevel maps ERROR/WARN/INFO/DEBUG/TRACE to a level; anything else is INFO
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	}
	return LogLevelInfo
}

// NewDefaultLogger creates a logger based on LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("LOG_LEVEL")))
}

func (l *Logger) emit(min LogLevel, lvl slog.Level, format string, args []interface{}) {
	if l.level < min {
		return
	}
	l.out.Log(context.Background(), lvl, fmt.Sprintf(format, args...))
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(LogLevelError, slog.LevelError, format, args)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(LogLevelWarn, slog.LevelWarn, format, args)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(LogLevelInfo, slog.LevelInfo, format, args)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.emit(LogLevelDebug, slog.LevelDebug, format, args)
}

// Trace logs trace messages
func (l *Logger) Trace(format string, args ...interface{}) {
	l.emit(LogLevelTrace, slogLevelTrace, format, args)
}

// DefaultLogger is the process-wide logger used by packages without an injected one
var DefaultLogger = NewDefaultLogger()

// SetDefault replaces DefaultLogger
func SetDefault(l *Logger) {
	DefaultLogger = l
}
