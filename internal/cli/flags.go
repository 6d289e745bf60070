package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// configEnv names a configuration file to use when --config is not given
const configEnv = "TREEMIRROR_CONFIG"

// GlobalFlags holds the flags shared by every subcommand
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags registers --config, --verbose and --quiet on the root command
func AddGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&globalFlags.ConfigFile, "config", os.Getenv(configEnv),
		"config file (default $"+configEnv+", then $HOME/.config/treemirror/config.yaml)")
	f.BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "list every file as it is processed")
	f.BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "only print errors and the final summary")
}
