package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdejongh/treemirror/internal/platform"
	"github.com/sdejongh/treemirror/pkg/config"
	"github.com/sdejongh/treemirror/pkg/logging"
	"github.com/sdejongh/treemirror/pkg/mirror"
	"github.com/sdejongh/treemirror/pkg/output"
	"github.com/sdejongh/treemirror/pkg/storage"
)

// MirrorFlags holds mirror command flags
type MirrorFlags struct {
	Source    string
	Dest      string
	Wildcards []string

	Verify      bool
	Continue    bool
	ShowPath    bool
	NoCopy      bool
	Update      bool
	ExactTime   bool
	Skew        time.Duration
	List        bool
	Hidden      bool
	Overwrite   bool
	Move        bool
	Clean       bool
	Wait        bool
	PriorityLow bool
	Root        bool
	Debug       bool
	Newer       string
	Older       string
	Include     []string
	Exclude     []string
	Output      string

	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var mirrorFlags MirrorFlags

// NewMirrorCommand creates the mirror command
func NewMirrorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror SOURCE DEST [WILDCARD...]",
		Short: "Mirror a directory tree onto another",
		Long: `Copy the contents of SOURCE into DEST, recursing into subdirectories.
When wildcards are given, only paths matching one of them are copied.
Wildcards are matched against the full path of files and directories and
support '?', '[a-z]' classes and at most one '*' per pattern.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runMirror,
	}

	f := cmd.Flags()
	f.BoolVar(&mirrorFlags.Verify, "verify", false, "verify contents of each copied file")
	f.BoolVar(&mirrorFlags.Continue, "continue", false, "continue copying even if an error occurs")
	f.BoolVar(&mirrorFlags.ShowPath, "show-path", false, "display full source and destination paths")
	f.BoolVarP(&mirrorFlags.NoCopy, "no-copy", "n", false, "don't copy or delete anything, only report")
	f.BoolVarP(&mirrorFlags.Update, "update", "u", false, "only copy files with a different time or size")
	f.BoolVar(&mirrorFlags.ExactTime, "exact-time", false, "compare timestamps exactly in update mode")
	f.DurationVar(&mirrorFlags.Skew, "skew", 0, "timestamp tolerance in update mode (default from config, 3s)")
	f.BoolVarP(&mirrorFlags.List, "list", "l", false, "list files that would be copied, but don't copy")
	f.BoolVar(&mirrorFlags.Hidden, "hidden", false, "include hidden and system files")
	f.BoolVar(&mirrorFlags.Overwrite, "overwrite", false, "overwrite read-only, hidden and system files in destination")
	f.BoolVar(&mirrorFlags.Move, "move", false, "delete the original files after copying them")
	f.BoolVar(&mirrorFlags.Clean, "clean", false, "delete files in destination that don't exist in source")
	f.BoolVar(&mirrorFlags.Wait, "wait", false, "ask for confirmation before copying")
	f.BoolVar(&mirrorFlags.PriorityLow, "priority-low", false, "run as a low priority process")
	f.BoolVar(&mirrorFlags.Root, "root", false, "append the full source path to DEST")
	f.BoolVar(&mirrorFlags.Debug, "debug", false, "dump the scanned trees to the log")
	f.StringVar(&mirrorFlags.Newer, "newer", "", "only copy files modified on or after mm/dd/yyyy")
	f.StringVar(&mirrorFlags.Older, "older", "", "only copy files modified on or before mm/dd/yyyy")
	f.StringSliceVar(&mirrorFlags.Include, "include", nil, "only copy paths containing one of these substrings")
	f.StringSliceVar(&mirrorFlags.Exclude, "exclude", nil, "skip paths containing one of these substrings")
	f.StringVarP(&mirrorFlags.Output, "output", "o", "", "output format: human, progress, json")

	// Logging flags
	f.StringVar(&mirrorFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	f.StringVar(&mirrorFlags.LogFormat, "log-format", "", "log format: text, json")
	f.StringVar(&mirrorFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func runMirror(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	mirrorFlags.Source = platform.NormalizePath(args[0])
	mirrorFlags.Dest = platform.NormalizePath(args[1])
	mirrorFlags.Wildcards = args[2:]

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	applyFlagsToConfig(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if mirrorFlags.Root {
		mirrorFlags.Dest = platform.RootedDest(mirrorFlags.Source, mirrorFlags.Dest)
	}

	if err := validateMirrorFlags(); err != nil {
		return err
	}

	operation, err := createMirrorOperation(cfg)
	if err != nil {
		return fmt.Errorf("failed to create mirror operation: %w", err)
	}

	logger, err := createLogger(cfg, mirrorFlags.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	if operation.LowPriority {
		if err := platform.LowerPriority(); err != nil {
			logger.Warn(ctx, "Could not lower process priority", logging.Fields{"error": err.Error()})
		}
	}

	backend := storage.NewLocal()
	defer backend.Close()

	engine := mirror.NewEngine(backend, createFormatter(cfg), logger, operation,
		mirror.WithConfirm(platform.Confirm))

	// The formatter has already reported err
	report, _ := engine.Run(ctx)

	logger.Close()
	os.Exit(report.Status.ExitCode())
	return nil
}

// createFormatter picks the console formatter for the configured output
func createFormatter(cfg *config.Config) output.Formatter {
	verbose := globalFlags.Verbose
	quiet := cfg.Output.Quiet

	switch cfg.Output.Format {
	case "json":
		return output.NewJSONFormatter()
	case "progress":
		return output.NewProgressFormatter(verbose, quiet)
	default:
		if cfg.Output.Progress && !verbose {
			return output.NewProgressFormatter(verbose, quiet)
		}
		return output.NewHumanFormatter(verbose, quiet)
	}
}

// createLogger creates a logger based on configuration
func createLogger(cfg *config.Config, logFile string) (logging.Logger, error) {
	if logFile == "" {
		logFile = cfg.Logging.File
	}
	// If no log file specified, return null logger
	if logFile == "" {
		return logging.NewNullLogger(), nil
	}

	return logging.NewFileLogger(cfg.FileLoggerConfig(logFile))
}
