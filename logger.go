package avakit

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	// LogLevelOff disables all logging.
	LogLevelOff
)

// String returns the string representation of a LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel converts a string to a LogLevel, defaulting to info.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LogLevelDebug
	case "INFO":
		return LogLevelInfo
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	case "OFF":
		return LogLevelOff
	default:
		return LogLevelInfo
	}
}

// Logger provides structured, leveled logging. The SDK ships its own minimal
// logger so it imposes no logging framework on host applications; hosts that
// want plain callbacks can use Config.Logger instead.
type Logger struct {
	level  LogLevel
	prefix string
	logger *log.Logger
}

// NewLogger creates a logger writing to stderr at the given level.
func NewLogger(level LogLevel) *Logger {
	return &Logger{
		level:  level,
		prefix: "[avakit]",
		logger: log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds),
	}
}

// NewLoggerFromEnv creates a logger with its level taken from the
// AVAKIT_LOG_LEVEL environment variable.
func NewLoggerFromEnv() *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("AVAKIT_LOG_LEVEL")))
}

// SetLevel updates the logger's minimum level.
func (l *Logger) SetLevel(level LogLevel) { l.level = level }

// SetOutput redirects log output, primarily for tests.
func (l *Logger) SetOutput(w io.Writer) { l.logger.SetOutput(w) }

// Debug logs debug-level messages.
func (l *Logger) Debug(event string, fields map[string]any) { l.log(LogLevelDebug, event, fields) }

// Info logs info-level messages.
func (l *Logger) Info(event string, fields map[string]any) { l.log(LogLevelInfo, event, fields) }

// Warn logs warning-level messages.
func (l *Logger) Warn(event string, fields map[string]any) { l.log(LogLevelWarn, event, fields) }

// Error logs error-level messages.
func (l *Logger) Error(event string, fields map[string]any) { l.log(LogLevelError, event, fields) }

func (l *Logger) log(level LogLevel, event string, fields map[string]any) {
	if level < l.level {
		return
	}
	var fieldStrs []string
	for k, v := range fields {
		fieldStrs = append(fieldStrs, fmt.Sprintf("%s=%v", k, v))
	}
	fieldsStr := ""
	if len(fieldStrs) > 0 {
		fieldsStr = " " + strings.Join(fieldStrs, " ")
	}
	l.logger.Printf("%s [%s] %s%s", l.prefix, level.String(), event, fieldsStr)
}

// logSink fans SDK log calls into whichever of the two Config logging options
// is set; the structured logger takes precedence.
type logSink struct {
	fn         func(event string, fields map[string]any)
	structured *Logger
}

func newLogSink(cfg Config) logSink {
	return logSink{fn: cfg.Logger, structured: cfg.StructuredLogger}
}

func (s logSink) info(event string, fields map[string]any) {
	if s.structured != nil {
		s.structured.Info(event, fields)
	} else if s.fn != nil {
		s.fn(event, fields)
	}
}

func (s logSink) warn(event string, fields map[string]any) {
	if s.structured != nil {
		s.structured.Warn(event, fields)
	} else if s.fn != nil {
		s.fn("WARN: "+event, fields)
	}
}

func (s logSink) error(event string, fields map[string]any) {
	if s.structured != nil {
		s.structured.Error(event, fields)
	} else if s.fn != nil {
		s.fn("ERROR: "+event, fields)
	}
}
