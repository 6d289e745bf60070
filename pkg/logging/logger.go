package logging

import (
	"context"
)

// Level is the severity of a record. A logger drops records below its level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the upper-case name used in text logs
func (l Level) String() string {
	return levelString(l)
}

// Fields are attached to a record as structured key/value pairs.
// The mirror engine sets operation_id on every record of a run.
type Fields map[string]any

// Logger is what the mirror engine and the CLI write to.
// Implementations are FileLogger and NullLogger.
type Logger interface {
	Debug(ctx context.Context, msg string, fields Fields)
	Info(ctx context.Context, msg string, fields Fields)
	Warn(ctx context.Context, msg string, fields Fields)

	// Error records err under the "error" key alongside fields
	Error(ctx context.Context, msg string, err error, fields Fields)

	// WithFields returns a logger that adds fields to every record
	WithFields(fields Fields) Logger

	// Close flushes buffered output and releases the log file
	Close() error
}
