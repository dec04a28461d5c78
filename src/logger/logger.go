package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// -----------------------------------------------------------------------------

// Log levels, ordered by severity
const (
	LevelDebug = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// -----------------------------------------------------------------------------

// Logger provides named, leveled logging on top of the standard logger
type Logger struct {
	name     string
	logger   *log.Logger
	minLevel int
	exit     func(int)
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger writing to stdout.
// level is a config string such as "DEBUG" or "warning"; unknown values mean INFO.
func NewLogger(level string, name string) *Logger {
	return NewLoggerTo(os.Stdout, level, name)
}

// NewLoggerTo creates a Logger writing to w (tests use a buffer).
func NewLoggerTo(w io.Writer, level string, name string) *Logger {
	return &Logger{
		name:     name,
		logger:   log.New(w, "", log.LstdFlags),
		minLevel: ParseLevel(level),
		exit:     os.Exit,
	}
}

// -----------------------------------------------------------------------------

// ParseLevel maps a config value to a level constant
func ParseLevel(level string) int {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return LevelDebug
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	case "CRITICAL":
		return LevelCritical
	default:
		return LevelInfo
	}
}

// -----------------------------------------------------------------------------

// Named returns a logger sharing output and level under another component name
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		name:     name,
		logger:   l.logger,
		minLevel: l.minLevel,
		exit:     l.exit,
	}
}

// -----------------------------------------------------------------------------

func (l *Logger) printf(level int, tag string, format string, args ...interface{}) {
	if level < l.minLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] %s: %s", l.name, tag, msg)
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.printf(LevelDebug, "DEBUG", format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.printf(LevelWarning, "WARNING", format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(LevelInfo, "INFO", format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(LevelError, "ERROR", format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] CRITICAL: %s", l.name, msg)
	l.exit(1)
}
