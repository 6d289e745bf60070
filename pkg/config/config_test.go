package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sdejongh/treemirror/pkg/logging"
	"github.com/sdejongh/treemirror/pkg/models"
)

func TestConfig_Validate(t *testing.T) {
	t.Run("Default Config", func(t *testing.T) {
		if err := Default().Validate(); err != nil {
			t.Errorf("expected default config to pass validation, but got error: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"Negative Skew", func(c *Config) { c.Mirror.TimestampSkew = -time.Second }, "mirror.timestamp_skew"},
		{"Bad Newer Date", func(c *Config) { c.Filter.NewerThan = "2024-01-01" }, "filter.newer_than"},
		{"Bad Older Date", func(c *Config) { c.Filter.OlderThan = "13/45/2024" }, "filter.older_than"},
		{"Unknown Output", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"Unknown Log Format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"Unknown Log Level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"Negative Backups", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.max_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected a ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}

	t.Run("Valid Dates", func(t *testing.T) {
		cfg := Default()
		cfg.Filter.NewerThan = "1/2/2024"
		cfg.Filter.OlderThan = "12/31/2024"
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Mirror.Update = true
	cfg.Mirror.TimestampSkew = 2 * time.Second
	cfg.Filter.Exclude = []string{"*.tmp", "cache"}
	cfg.Logging.Compress = true

	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if !loaded.Mirror.Update {
		t.Error("mirror.update should round-trip")
	}
	if loaded.Mirror.TimestampSkew != 2*time.Second {
		t.Errorf("timestamp_skew = %v, want 2s", loaded.Mirror.TimestampSkew)
	}
	if len(loaded.Filter.Exclude) != 2 || loaded.Filter.Exclude[1] != "cache" {
		t.Errorf("filter.exclude = %v", loaded.Filter.Exclude)
	}
	if !loaded.Logging.Compress {
		t.Error("logging.compress should round-trip")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# treemirror configuration") {
		t.Errorf("saved config should start with the header, got:\n%s", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("failed to list config dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("config dir holds %d entries, want only config.yaml", len(entries))
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Run("Partial File Keeps Defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "mirror:\n  verify: true\n  timestamp_skew: 5s\nlogging:\n  level: debug\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("LoadFromFile() error = %v", err)
		}
		if !cfg.Mirror.Verify {
			t.Error("mirror.verify should be true")
		}
		if cfg.Mirror.TimestampSkew != 5*time.Second {
			t.Errorf("timestamp_skew = %v, want 5s", cfg.Mirror.TimestampSkew)
		}
		if cfg.Output.Format != "human" {
			t.Errorf("output.format = %q, want default 'human'", cfg.Output.Format)
		}
		if cfg.Logging.MaxBackups != 3 {
			t.Errorf("logging.max_backups = %d, want default 3", cfg.Logging.MaxBackups)
		}
	})

	t.Run("Invalid Values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("output:\n  format: xml\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadFromFile(path); err == nil {
			t.Error("expected an error for an invalid output format")
		}
	})

	t.Run("Empty File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		cfg, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("LoadFromFile() error = %v", err)
		}
		if cfg.Mirror.TimestampSkew != models.DefaultTimestampSkew {
			t.Errorf("timestamp_skew = %v, want default", cfg.Mirror.TimestampSkew)
		}
	})

	t.Run("Unknown Key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("mirror:\n  verfy: true\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadFromFile(path); err == nil {
			t.Error("expected an error for a misspelt key")
		}
	})

	t.Run("Negative Skew", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("mirror:\n  timestamp_skew: -2s\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		_, err := LoadFromFile(path)
		var verr *models.ValidationError
		if !errors.As(err, &verr) || verr.Field != "mirror.timestamp_skew" {
			t.Errorf("LoadFromFile() error = %v, want a mirror.timestamp_skew validation error", err)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})
}

func TestFileLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "warn"

	lc := cfg.FileLoggerConfig("/tmp/mirror.log")
	if lc.Path != "/tmp/mirror.log" {
		t.Errorf("Path = %q", lc.Path)
	}
	if lc.Format != logging.FormatJSON {
		t.Errorf("Format = %q, want json", lc.Format)
	}
	if lc.Level != logging.WarnLevel {
		t.Errorf("Level = %v, want WarnLevel", lc.Level)
	}
	if lc.MaxBackups != 3 {
		t.Errorf("MaxBackups = %d, want 3", lc.MaxBackups)
	}
}
