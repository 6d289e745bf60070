package config

import (
	"time"

	"github.com/sdejongh/treemirror/pkg/logging"
	"github.com/sdejongh/treemirror/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Mirror      MirrorConfig      `yaml:"mirror"`
	Filter      FilterConfig      `yaml:"filter"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// MirrorConfig holds the copy behaviour defaults
type MirrorConfig struct {
	Update          bool          `yaml:"update"`
	Verify          bool          `yaml:"verify"`
	ContinueOnError bool          `yaml:"continue_on_error"`
	Hidden          bool          `yaml:"hidden"`
	Overwrite       bool          `yaml:"overwrite"`
	Move            bool          `yaml:"move"`
	Clean           bool          `yaml:"clean"`
	ExactTimestamps bool          `yaml:"exact_timestamps"`
	TimestampSkew   time.Duration `yaml:"timestamp_skew"`
}

// FilterConfig holds the default selection rules
type FilterConfig struct {
	Include   []string `yaml:"include"`
	Exclude   []string `yaml:"exclude"`
	Wildcards []string `yaml:"wildcards"`
	NewerThan string   `yaml:"newer_than"` // mm/dd/yyyy
	OlderThan string   `yaml:"older_than"` // mm/dd/yyyy
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	LowPriority bool `yaml:"low_priority"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human", "progress" or "json"
	Progress bool   `yaml:"progress"` // Show progress bars
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
	ShowPath bool   `yaml:"show_path"`
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	File       string `yaml:"file"`   // Log file path (empty = no log)
	Format     string `yaml:"format"` // "json" or "text"
	Level      string `yaml:"level"`  // "debug", "info", "warn", "error"
	MaxSize    int64  `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Mirror: MirrorConfig{
			TimestampSkew: models.DefaultTimestampSkew,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
		},
		Logging: LoggingConfig{
			Format:     "text",
			Level:      "info",
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 3,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mirror.TimestampSkew < 0 {
		return &models.ValidationError{
			Field:   "mirror.timestamp_skew",
			Message: "cannot be negative",
		}
	}

	if _, err := models.ParseDate(c.Filter.NewerThan); err != nil {
		return &models.ValidationError{Field: "filter.newer_than", Message: err.Error()}
	}
	if _, err := models.ParseDate(c.Filter.OlderThan); err != nil {
		return &models.ValidationError{Field: "filter.older_than", Message: err.Error()}
	}

	validFormats := map[string]bool{"human": true, "progress": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human', 'progress' or 'json'",
		}
	}

	validLogFormats := map[string]bool{string(logging.FormatJSON): true, string(logging.FormatText): true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Logging.MaxSize < 0 || c.Logging.MaxBackups < 0 {
		return &models.ValidationError{
			Field:   "logging.max_size",
			Message: "rotation limits cannot be negative",
		}
	}

	return nil
}

// FileLoggerConfig returns the logger settings for path
func (c *Config) FileLoggerConfig(path string) logging.FileLoggerConfig {
	return logging.FileLoggerConfig{
		Path:       path,
		Format:     logging.Format(c.Logging.Format),
		Level:      logging.ParseLevel(c.Logging.Level),
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		Compress:   c.Logging.Compress,
	}
}
