package cmd

import (
	"fmt"

	"github.com/dsmmcken/bnetdata/internal/config"
	"github.com/dsmmcken/bnetdata/internal/output"
	"github.com/spf13/cobra"
)

func addConfigCommands(rootCmd *cobra.Command) {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage bnetdata configuration",
		Long:  "Show, get, and set values in the bnetdata config file (~/.bnetdata/config.toml).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.PrintJSON(cmd.OutOrStdout(), cfg)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", config.ConfigPath())
			for _, key := range config.Keys {
				val, err := config.Get(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, val)
			}
			return nil
		},
	}

	configGetCmd := &cobra.Command{
		Use:   "get <KEY>",
		Short: "Get a config value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			val, err := config.Get(args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.PrintJSON(cmd.OutOrStdout(), map[string]string{"key": args[0], "value": val})
			}
			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		},
	}

	configSetCmd := &cobra.Command{
		Use:   "set <KEY> <VALUE>",
		Short: "Set a config value",
		Long:  "Set a config value. Durations use Go syntax (500ms, 5s); process.patterns is comma separated.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Set(args[0], args[1]); err != nil {
				return err
			}
			if !output.IsQuiet() {
				fmt.Fprintln(cmd.OutOrStdout(), output.Success(fmt.Sprintf("Set %s = %s", args[0], args[1])))
			}
			return nil
		},
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.ConfigPath())
			return nil
		},
	}

	configCmd.AddCommand(configGetCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
