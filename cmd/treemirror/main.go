package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sdejongh/treemirror/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "treemirror",
		Short: "Directory tree mirroring utility",
		Long: `treemirror copies one directory tree onto another.
It can skip up-to-date files, verify copies, move instead of copy,
and clean destination entries that no longer exist in the source.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", cli.Version, cli.Commit, cli.BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(cli.NewMirrorCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())

	// Ctrl-C cancels the run; the engine reports status cancelled
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}
