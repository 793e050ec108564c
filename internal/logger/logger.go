// Package logger provides the component loggers used across the toolkit.
package logger

// Logger is the logging contract the app and adapters depend on.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// New returns a Logger for the given component. The output format is
// detected via the APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component, "")
}

// NewWithLevel returns a Logger for the given component filtered to the
// named level (debug, info, warn, error).
func NewWithLevel(component, level string) Logger {
	return NewZerologLogger(component, level)
}
