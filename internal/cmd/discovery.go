package cmd

import (
	"fmt"

	"github.com/dsmmcken/bnetdata/internal/output"
	"github.com/spf13/cobra"
)

func addDiscoveryCommands(parent *cobra.Command) {
	parent.AddCommand(newProcessCmd())
	parent.AddCommand(newPortCmd())
}

func newProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Print the pid of the running StarCraft client",
		Args:  cobra.NoArgs,
		RunE:  runProcess,
	}
}

func runProcess(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	res, err := rt.discover(cmd.Context(), true)
	if err != nil {
		return err
	}

	if output.IsJSON() {
		return output.PrintJSON(cmd.OutOrStdout(), map[string]any{"pid": res.PID})
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.PID)
	return nil
}

func newPortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "port",
		Short: "Print the port of StarCraft's local web API",
		Long: "Find the running StarCraft client, list the loopback ports it holds, and probe\n" +
			"them concurrently. The first port that answers like the web API is printed.",
		Args: cobra.NoArgs,
		RunE: runPort,
	}
}

func runPort(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	res, err := rt.discover(cmd.Context(), false)
	if err != nil {
		return err
	}

	if output.IsJSON() {
		return output.PrintJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Port)
	return nil
}
