// Package logger wraps charmbracelet/log into the small diagnostic
// surface the release core needs: a leveled, structured logger whose
// verbosity is decided once at construction from the resolved config.
package logger

import (
	"io"

	"github.com/charmbracelet/log"
)

// Logger is the core's diagnostic logger. Verbose mode turns on debug
// output, which the orchestrator uses to trace every considered commit and
// its derived rule; non-verbose runs emit warnings and errors only, since
// the user-facing report goes through the release Report, not the log.
type Logger struct {
	l *log.Logger
}

// New builds a Logger writing to w. With verbose set, debug records are
// emitted; otherwise only warnings and errors pass through.
func New(w io.Writer, verbose bool) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.WarnLevel)
	}
	return &Logger{l: l}
}

// Nop returns a Logger that discards everything. Used as the default when
// the caller passes no logger.
func Nop() *Logger {
	return New(io.Discard, false)
}

// Debug emits a debug record with optional key-value pairs.
func (lg *Logger) Debug(msg string, kv ...interface{}) { lg.l.Debug(msg, kv...) }

// Info emits an info record with optional key-value pairs.
func (lg *Logger) Info(msg string, kv ...interface{}) { lg.l.Info(msg, kv...) }

// Warn emits a warning record with optional key-value pairs.
func (lg *Logger) Warn(msg string, kv ...interface{}) { lg.l.Warn(msg, kv...) }

// Error emits an error record with optional key-value pairs.
func (lg *Logger) Error(msg string, kv ...interface{}) { lg.l.Error(msg, kv...) }

// WithPackage returns a copy of the logger with a package=name field
// attached to every record, so per-package traces stay attributable when
// multiple packages are processed in one run.
func (lg *Logger) WithPackage(name string) *Logger {
	return &Logger{l: lg.l.With("package", name)}
}
