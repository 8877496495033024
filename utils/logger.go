package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger wraps standard log with level-based output
type Logger struct {
	info    *log.Logger
	warn    *log.Logger
	error   *log.Logger
	debug   *log.Logger
	verbose bool
	now     func() time.Time
}

// NewLogger creates a logger that writes every level to stderr,
// keeping stdout free for the check report
func NewLogger(verbose bool) *Logger {
	return NewLoggerTo(os.Stderr, verbose)
}

// NewLoggerTo creates a logger writing to w
func NewLoggerTo(w io.Writer, verbose bool) *Logger {
	flags := log.Lmsgprefix
	return &Logger{
		info:    log.New(w, "[INFO]  ", flags),
		warn:    log.New(w, "[WARN]  ", flags),
		error:   log.New(w, "[ERROR] ", flags),
		debug:   log.New(w, "[DEBUG] ", flags),
		verbose: verbose,
		now:     time.Now,
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewLoggerTo(io.Discard, false)
}

func (l *Logger) prefix() string {
	return fmt.Sprintf(" %s ", l.now().Format("15:04:05"))
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.info.Printf(l.prefix()+msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.warn.Printf(l.prefix()+msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.error.Printf(l.prefix()+msg, args...)
}

// Debug is a no-op unless the logger was created verbose
func (l *Logger) Debug(msg string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.debug.Printf(l.prefix()+msg, args...)
}

// Verbose reports whether debug output is enabled
func (l *Logger) Verbose() bool {
	return l.verbose
}
