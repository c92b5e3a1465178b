package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dsmmcken/bnetdata/internal/bnetapi"
	"github.com/dsmmcken/bnetdata/internal/output"
	"github.com/spf13/cobra"
)

func addLadderCommand(parent *cobra.Command) {
	var offset, length int

	ladderCmd := &cobra.Command{
		Use:   "ladder",
		Short: "Show the global 1v1 ladder",
		Long:  "Show standings of the current season's global 1v1 ladder, top 100 by default.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if offset < 0 {
				return fmt.Errorf("--offset must not be negative")
			}
			if length < 1 {
				return fmt.Errorf("--length must be at least 1")
			}
			return runLadder(cmd, offset, length)
		},
	}
	ladderCmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip (0 starts at rank 1)")
	ladderCmd.Flags().IntVar(&length, "length", 100, "Rows to show")

	parent.AddCommand(ladderCmd)
}

func runLadder(cmd *cobra.Command, offset, length int) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	client, err := rt.apiClient(cmd.Context())
	if err != nil {
		return err
	}
	standings, err := client.LadderStandings(cmd.Context(), offset, length)
	if err != nil {
		return err
	}

	if output.IsJSON() {
		return output.PrintJSON(cmd.OutOrStdout(), standings)
	}

	if !output.IsQuiet() {
		fmt.Fprintln(cmd.OutOrStdout(), output.Title("StarCraft Remastered ladder"),
			output.Dim("(updated "+standings.Updated.Local().Format(time.DateTime)+")"))
	}
	return printLadderEntries(cmd, standings.Entries)
}

func printLadderEntries(cmd *cobra.Command, entries []bnetapi.LadderEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tPOINTS\tW\tL\tTIER\tRACE\tTOON\tBATTLETAG")
	for _, e := range entries {
		tier := ""
		if r, err := bnetapi.RankForBucket(e.Bucket); err == nil {
			tier = r.Letter
		}
		race := ""
		if r, err := bnetapi.RaceForFeature(e.FeatureStat); err == nil && r != nil {
			race = r.Letter
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%s\t%s\t%s\t%s\n",
			e.Rank, e.Points, e.Wins, e.Losses, tier, race, e.Toon, e.Battletag)
	}
	return w.Flush()
}
