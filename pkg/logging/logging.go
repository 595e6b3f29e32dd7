// Package logging wraps logr.Logger with the handful of leveled convenience
// methods the rest of the library calls, keeping call sites short.
package logging

import (
	"github.com/go-logr/logr"
)

const (
	DEBUG = 1
	TRACE = 2
)

// NewLogger wraps the given logr.Logger, substituting logr.Discard() if the
// caller passed a zero-value logger.
func NewLogger(log logr.Logger) *Logger {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Logger{log: log}
}

// DefaultLogger returns a logger that discards everything, used when no
// WithLogger option is supplied.
func DefaultLogger() *Logger {
	return &Logger{log: logr.Discard()}
}

// Logger narrows logr.Logger to the handful of calls used throughout the
// library.
type Logger struct {
	log logr.Logger
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.V(DEBUG).Info(msg, keysAndValues...)
}

func (l *Logger) Trace(msg string, keysAndValues ...interface{}) {
	l.log.V(TRACE).Info(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info(msg, keysAndValues...)
}

func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(err, msg, keysAndValues...)
}

// Logr returns the underlying logr.Logger, for components that need to pass
// it down to a sub-package rather than the narrowed wrapper.
func (l *Logger) Logr() logr.Logger {
	return l.log
}
