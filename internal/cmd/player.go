package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dsmmcken/bnetdata/internal/output"
	"github.com/spf13/cobra"
)

// recentMatches is how many matches the text view of a player lists.
const recentMatches = 10

func addPlayerCommands(parent *cobra.Command) {
	parent.AddCommand(&cobra.Command{
		Use:   "player <ID>",
		Short: "Show a player's ladder record",
		Long:  "Look a player up by toon name or battletag and show their rank, race, accounts and match history.",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlayer,
	})
	parent.AddCommand(&cobra.Command{
		Use:   "search <TERM>",
		Short: "Search the ladder by player name",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	})
}

func runPlayer(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	client, err := rt.apiClient(cmd.Context())
	if err != nil {
		return err
	}
	p, err := client.PlayerByID(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if output.IsJSON() {
		return output.PrintJSON(out, p)
	}

	fmt.Fprintln(out, output.Title(p.Name), output.Dim(p.AccountName))
	race := "-"
	if p.Race != nil {
		race = p.Race.Name
	}
	fmt.Fprintf(out, "Rank:    #%d (%s, %d points)\n", p.Rank.Rank, p.Rank.Letter, p.Rank.Points)
	fmt.Fprintf(out, "Race:    %s\n", race)
	fmt.Fprintf(out, "Record:  %d-%d (%d disconnects)\n", p.Stats.Wins, p.Stats.Losses, p.Stats.Disconnects)
	fmt.Fprintf(out, "Country: %s\n", p.Profile.CountryCode)
	fmt.Fprintf(out, "Updated: %s\n", p.Updated.Local().Format(time.DateTime))

	if len(p.Matches) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tRESULT\tMAP\tGATEWAY\tLADDER")
	for i, m := range p.Matches {
		if i == recentMatches {
			break
		}
		ladder := "no"
		if m.Match.IsLadderGame {
			ladder = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			m.Match.Date.Local().Format(time.DateTime), m.Result, m.Map.Name, m.Gateway.Code, ladder)
	}
	return w.Flush()
}

func runSearch(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	client, err := rt.apiClient(cmd.Context())
	if err != nil {
		return err
	}
	hits, err := client.SearchPlayers(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if output.IsJSON() {
		return output.PrintJSON(cmd.OutOrStdout(), map[string]any{"results": hits})
	}
	if len(hits) == 0 {
		if !output.IsQuiet() {
			fmt.Fprintln(cmd.OutOrStdout(), "No players found.")
		}
		return nil
	}

	return printLadderEntries(cmd, hits)
}
