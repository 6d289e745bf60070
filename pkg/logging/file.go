package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the maximum number of backup files to keep
	MaxBackups int
	// Compress gzips rotated backups
	Compress bool
}

// FileLogger implements Logger on top of zerolog, writing to a rotating file
type FileLogger struct {
	zl  zerolog.Logger
	out *rotatingWriter
}

// NewFileLogger creates a new file logger
func NewFileLogger(config FileLoggerConfig) (*FileLogger, error) {
	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	out, err := openRotatingWriter(config.Path, config.MaxSize, config.MaxBackups, config.Compress)
	if err != nil {
		return nil, err
	}

	var zl zerolog.Logger
	if config.Format == FormatJSON {
		zl = zerolog.New(out)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    true,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			FormatLevel: func(i interface{}) string {
				return "[" + strings.ToUpper(fmt.Sprint(i)) + "]"
			},
		})
	}
	zl = zl.Level(toZerolog(config.Level)).With().Timestamp().Logger()

	return &FileLogger{zl: zl, out: out}, nil
}

// Debug logs a debug message
func (l *FileLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.zl.Debug().Fields(map[string]interface{}(fields)).Msg(msg)
}

// Info logs an info message
func (l *FileLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.zl.Info().Fields(map[string]interface{}(fields)).Msg(msg)
}

// Warn logs a warning message
func (l *FileLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.zl.Warn().Fields(map[string]interface{}(fields)).Msg(msg)
}

// Error logs an error message
func (l *FileLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.zl.Error().Err(err).Fields(map[string]interface{}(fields)).Msg(msg)
}

// WithFields returns a logger with additional fields.
// The returned logger shares the underlying file.
func (l *FileLogger) WithFields(fields Fields) Logger {
	return &FileLogger{
		zl:  l.zl.With().Fields(map[string]interface{}(fields)).Logger(),
		out: l.out,
	}
}

// Close flushes and closes the logger
func (l *FileLogger) Close() error {
	return l.out.Close()
}

func toZerolog(level Level) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// levelString returns the string representation of a log level
func levelString(level Level) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a log level string
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return DebugLevel
	case "info", "INFO":
		return InfoLevel
	case "warn", "WARN", "warning", "WARNING":
		return WarnLevel
	case "error", "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// LevelString returns level as string (exported version)
func LevelString(level Level) string {
	return levelString(level)
}
