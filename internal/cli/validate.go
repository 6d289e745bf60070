package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sdejongh/treemirror/internal/platform"
	"github.com/sdejongh/treemirror/pkg/config"
	"github.com/sdejongh/treemirror/pkg/models"
)

// validateMirrorFlags validates the mirror command arguments
func validateMirrorFlags() error {
	if err := platform.ValidatePath(mirrorFlags.Source); err != nil {
		return err
	}
	if err := platform.ValidatePath(mirrorFlags.Dest); err != nil {
		return err
	}

	// Validate source exists
	srcInfo, err := os.Stat(mirrorFlags.Source)
	if os.IsNotExist(err) {
		return fmt.Errorf("source path does not exist: %s", mirrorFlags.Source)
	} else if err != nil {
		return fmt.Errorf("failed to access source path: %w", err)
	} else if !srcInfo.IsDir() {
		return fmt.Errorf("source path is not a directory: %s", mirrorFlags.Source)
	}

	// A missing destination is created by the run
	if destInfo, err := os.Stat(mirrorFlags.Dest); err == nil && !destInfo.IsDir() {
		return fmt.Errorf("destination path exists but is not a directory: %s", mirrorFlags.Dest)
	}

	// Validate paths are not identical
	sourceAbs, err := filepath.Abs(mirrorFlags.Source)
	if err != nil {
		return fmt.Errorf("failed to resolve source path: %w", err)
	}

	destAbs, err := filepath.Abs(mirrorFlags.Dest)
	if err != nil {
		return fmt.Errorf("failed to resolve destination path: %w", err)
	}

	if strings.EqualFold(sourceAbs, destAbs) {
		return fmt.Errorf("source and destination cannot be the same: %s", sourceAbs)
	}

	// Validate paths are not nested
	if hasPathPrefix(destAbs, sourceAbs) {
		return fmt.Errorf("destination cannot be inside source directory")
	}
	if hasPathPrefix(sourceAbs, destAbs) {
		return fmt.Errorf("source cannot be inside destination directory")
	}

	if globalFlags.Verbose && globalFlags.Quiet {
		return fmt.Errorf("--verbose and --quiet cannot be used together")
	}
	if mirrorFlags.List && mirrorFlags.NoCopy {
		return fmt.Errorf("--list and --no-copy cannot be used together")
	}

	return nil
}

// hasPathPrefix reports whether path lies below dir, ignoring case
func hasPathPrefix(path, dir string) bool {
	dir = strings.TrimRight(dir, `\/`) + string(filepath.Separator)
	return len(path) >= len(dir) && strings.EqualFold(path[:len(dir)], dir)
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with the flags set on the command line
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	bools := []struct {
		name string
		dst  *bool
		val  bool
	}{
		{"update", &cfg.Mirror.Update, mirrorFlags.Update},
		{"verify", &cfg.Mirror.Verify, mirrorFlags.Verify},
		{"continue", &cfg.Mirror.ContinueOnError, mirrorFlags.Continue},
		{"hidden", &cfg.Mirror.Hidden, mirrorFlags.Hidden},
		{"overwrite", &cfg.Mirror.Overwrite, mirrorFlags.Overwrite},
		{"move", &cfg.Mirror.Move, mirrorFlags.Move},
		{"clean", &cfg.Mirror.Clean, mirrorFlags.Clean},
		{"exact-time", &cfg.Mirror.ExactTimestamps, mirrorFlags.ExactTime},
		{"priority-low", &cfg.Performance.LowPriority, mirrorFlags.PriorityLow},
		{"show-path", &cfg.Output.ShowPath, mirrorFlags.ShowPath},
	}
	for _, b := range bools {
		if flags.Changed(b.name) {
			*b.dst = b.val
		}
	}

	if flags.Changed("skew") {
		cfg.Mirror.TimestampSkew = mirrorFlags.Skew
	}

	// Filters
	if len(mirrorFlags.Include) > 0 {
		cfg.Filter.Include = mirrorFlags.Include
	}
	if len(mirrorFlags.Exclude) > 0 {
		cfg.Filter.Exclude = mirrorFlags.Exclude
	}
	if len(mirrorFlags.Wildcards) > 0 {
		cfg.Filter.Wildcards = mirrorFlags.Wildcards
	}
	if mirrorFlags.Newer != "" {
		cfg.Filter.NewerThan = mirrorFlags.Newer
	}
	if mirrorFlags.Older != "" {
		cfg.Filter.OlderThan = mirrorFlags.Older
	}

	// Output format
	if mirrorFlags.Output != "" {
		cfg.Output.Format = mirrorFlags.Output
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	// Logging
	if mirrorFlags.LogFormat != "" {
		cfg.Logging.Format = mirrorFlags.LogFormat
	}
	if mirrorFlags.LogLevel != "" {
		cfg.Logging.Level = mirrorFlags.LogLevel
	} else if mirrorFlags.Debug {
		cfg.Logging.Level = "debug"
	}
}

// createMirrorOperation creates a mirror operation from configuration
func createMirrorOperation(cfg *config.Config) (*models.MirrorOperation, error) {
	newer, err := models.ParseDate(cfg.Filter.NewerThan)
	if err != nil {
		return nil, err
	}
	older, err := models.ParseDate(cfg.Filter.OlderThan)
	if err != nil {
		return nil, err
	}

	operation := &models.MirrorOperation{
		ID:                 uuid.New().String(),
		Source:             mirrorFlags.Source,
		Dest:               mirrorFlags.Dest,
		LogFile:            mirrorFlags.LogFile,
		Wildcards:          cfg.Filter.Wildcards,
		Includes:           cfg.Filter.Include,
		Excludes:           cfg.Filter.Exclude,
		NewerThan:          newer,
		OlderThan:          older,
		Hidden:             cfg.Mirror.Hidden,
		Update:             cfg.Mirror.Update,
		ExactTimestamps:    cfg.Mirror.ExactTimestamps,
		TimestampSkew:      cfg.Mirror.TimestampSkew,
		Verify:             cfg.Mirror.Verify,
		ContinueAfterError: cfg.Mirror.ContinueOnError,
		Overwrite:          cfg.Mirror.Overwrite,
		Move:               cfg.Mirror.Move,
		Clean:              cfg.Mirror.Clean,
		NoCopy:             mirrorFlags.NoCopy,
		List:               mirrorFlags.List,
		Wait:               mirrorFlags.Wait,
		Root:               mirrorFlags.Root,
		LowPriority:        cfg.Performance.LowPriority,
		Debug:              mirrorFlags.Debug,
		Verbose:            globalFlags.Verbose,
		Quiet:              cfg.Output.Quiet,
		ShowPath:           cfg.Output.ShowPath,
		CreatedAt:          time.Now(),
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}
