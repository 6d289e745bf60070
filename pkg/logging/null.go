package logging

import "context"

// NullLogger drops every record. The mirror engine falls back to it when it
// is given no logger, and the CLI uses it when no log file is configured.
type NullLogger struct{}

var _ Logger = NullLogger{}

// NewNullLogger returns a logger that writes nothing
func NewNullLogger() NullLogger {
	return NullLogger{}
}

func (NullLogger) Debug(context.Context, string, Fields)        {}
func (NullLogger) Info(context.Context, string, Fields)         {}
func (NullLogger) Warn(context.Context, string, Fields)         {}
func (NullLogger) Error(context.Context, string, error, Fields) {}

// WithFields returns the logger itself; there is nothing to attach fields to
func (l NullLogger) WithFields(Fields) Logger {
	return l
}

func (NullLogger) Close() error {
	return nil
}
