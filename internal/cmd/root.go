package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/dsmmcken/bnetdata/internal/config"
	"github.com/dsmmcken/bnetdata/internal/output"
	"github.com/spf13/cobra"
)

var Version = "dev"

var (
	jsonFlag    bool
	verboseFlag bool
	quietFlag   bool
	noColorFlag bool
	ConfigDir   string
	hostFlag    string
	portFlag    int
)

func NewRootCmd() *cobra.Command {
	cmd := newRootCmd()
	addDiscoveryCommands(cmd)
	addLadderCommand(cmd)
	addPlayerCommands(cmd)
	addConfigCommands(cmd)
	addDoctorCommand(cmd)
	return cmd
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bnetdata",
		Short: "StarCraft local web API tool",
		Long: "bnetdata finds the running StarCraft client, locates the port its local web API\n" +
			"listens on, and queries ladder and player data from it.",
		Version:       fmt.Sprintf("bnetdata v%s", Version),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verboseFlag && quietFlag {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}
			if jsonFlag {
				quietFlag = true
			}
			output.SetFlags(jsonFlag, quietFlag, verboseFlag, noColorFlag)
			config.SetConfigDir(ConfigDir)
			if portFlag < 0 || portFlag > 65535 {
				return fmt.Errorf("--port must be between 1 and 65535")
			}
			return nil
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.SetVersionTemplate("{{.Version}}\n")

	pflags := rootCmd.PersistentFlags()
	pflags.BoolVarP(&jsonFlag, "json", "j", false, "Output as JSON")
	pflags.BoolVarP(&verboseFlag, "verbose", "v", false, "Debug logging to stderr")
	pflags.BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output")
	pflags.BoolVar(&noColorFlag, "no-color", false, "Disable ANSI colors")
	pflags.StringVar(&ConfigDir, "config-dir", "", "Override config directory (default: ~/.bnetdata)")
	pflags.StringVar(&hostFlag, "host", "", "Host the web API is reached on (default: 127.0.0.1)")
	pflags.IntVar(&portFlag, "port", 0, "Use this API port instead of discovering it")

	// Environment variable bindings
	if os.Getenv("NO_COLOR") != "" {
		noColorFlag = true
	}
	if os.Getenv("BNETDATA_JSON") == "1" {
		jsonFlag = true
	}

	return rootCmd
}

// Execute runs the command tree. The returned error, if any, carries the
// exit code; see ExitCode.
func Execute(ctx context.Context) error {
	cmd := NewRootCmd()
	return cmd.ExecuteContext(ctx)
}
