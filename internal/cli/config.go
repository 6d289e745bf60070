package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sdejongh/treemirror/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or create the treemirror configuration file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "Update: %t\n", cfg.Mirror.Update)
	fmt.Fprintf(w, "Verify: %t\n", cfg.Mirror.Verify)
	fmt.Fprintf(w, "Continue On Error: %t\n", cfg.Mirror.ContinueOnError)
	fmt.Fprintf(w, "Hidden: %t\n", cfg.Mirror.Hidden)
	fmt.Fprintf(w, "Overwrite: %t\n", cfg.Mirror.Overwrite)
	fmt.Fprintf(w, "Move: %t\n", cfg.Mirror.Move)
	fmt.Fprintf(w, "Clean: %t\n", cfg.Mirror.Clean)
	fmt.Fprintf(w, "Exact Timestamps: %t\n", cfg.Mirror.ExactTimestamps)
	fmt.Fprintf(w, "Timestamp Skew: %s\n", cfg.Mirror.TimestampSkew)
	fmt.Fprintf(w, "Include: %s\n", strings.Join(cfg.Filter.Include, ", "))
	fmt.Fprintf(w, "Exclude: %s\n", strings.Join(cfg.Filter.Exclude, ", "))
	fmt.Fprintf(w, "Wildcards: %s\n", strings.Join(cfg.Filter.Wildcards, " "))
	fmt.Fprintf(w, "Newer Than: %s\n", cfg.Filter.NewerThan)
	fmt.Fprintf(w, "Older Than: %s\n", cfg.Filter.OlderThan)
	fmt.Fprintf(w, "Low Priority: %t\n", cfg.Performance.LowPriority)
	fmt.Fprintf(w, "Output Format: %s\n", cfg.Output.Format)
	fmt.Fprintf(w, "Log File: %s\n", cfg.Logging.File)
	fmt.Fprintf(w, "Log Format: %s\n", cfg.Logging.Format)
	fmt.Fprintf(w, "Log Level: %s\n", cfg.Logging.Level)
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalFlags.ConfigFile
			if path == "" {
				var err error
				if path, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
			}

			if err := config.SaveToFile(config.Default(), path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}
