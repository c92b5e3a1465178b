package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dsmmcken/bnetdata/internal/config"
	"github.com/dsmmcken/bnetdata/internal/discovery"
	"github.com/dsmmcken/bnetdata/internal/output"
	"github.com/spf13/cobra"
)

var fixFlag bool

func addDoctorCommand(parent *cobra.Command) {
	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check environment health",
		Long:  "Check the listing tools, the configuration, the game process and its web API, and report what is wrong.",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}

	doctorCmd.Flags().BoolVar(&fixFlag, "fix", false, "Suggest fixes for failed checks")

	parent.AddCommand(doctorCmd)
}

// CheckResult holds the result of a single doctor check.
type CheckResult struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok", "warning", "error"
	Detail string `json:"detail"`
}

// DoctorReport holds the complete doctor output.
type DoctorReport struct {
	Healthy bool          `json:"healthy"`
	Checks  []CheckResult `json:"checks"`
}

// Replaceable in tests.
var lookPath = exec.LookPath

func runDoctor(cmd *cobra.Command, args []string) error {
	checks := []CheckResult{checkTools(hostPlatform)}

	rt, err := newRuntime(cmd)
	if err != nil {
		checks = append(checks,
			CheckResult{Name: "Config", Status: "error", Detail: err.Error()},
			CheckResult{Name: "Game", Status: "warning", Detail: "skipped"},
			CheckResult{Name: "API", Status: "warning", Detail: "skipped"},
		)
	} else {
		checks = append(checks, CheckResult{Name: "Config", Status: "ok", Detail: config.ConfigPath()})
		checks = append(checks, checkGame(cmd.Context(), rt)...)
	}

	healthy := true
	for _, c := range checks {
		if c.Status == "error" {
			healthy = false
			break
		}
	}

	report := DoctorReport{
		Healthy: healthy,
		Checks:  checks,
	}

	if output.IsJSON() {
		return output.PrintJSON(cmd.OutOrStdout(), report)
	}

	if output.IsQuiet() && healthy {
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), output.Title("bnetdata doctor"))
	fmt.Fprintln(cmd.OutOrStdout())

	var warnings, errors int
	for _, c := range checks {
		symbol := output.Success("✓")
		switch c.Status {
		case "warning":
			symbol = output.Dim("⚠")
			warnings++
		case "error":
			symbol = output.Errorf("✗")
			errors++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %-8s %s\n", symbol, c.Name, c.Detail)
	}

	fmt.Fprintln(cmd.OutOrStdout())

	if errors > 0 {
		parts := []string{pluralize(errors, "error")}
		if warnings > 0 {
			parts = append(parts, pluralize(warnings, "warning"))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Problems found (%s).\n", strings.Join(parts, ", "))
	} else if warnings > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Everything looks good (%s).\n", pluralize(warnings, "warning"))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Everything looks good.")
	}

	if fixFlag {
		printFixes(cmd, checks)
	}
	return nil
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// checkTools verifies the platform's listing commands are on PATH.
func checkTools(p discovery.Platform) CheckResult {
	procName, _ := p.ProcessParser().Command()
	sockName, _ := p.SocketParser().Command(0)

	var missing, found []string
	for _, name := range []string{procName, sockName} {
		path, err := lookPath(name)
		if err != nil {
			missing = append(missing, name)
			continue
		}
		found = append(found, path)
	}
	if len(missing) > 0 {
		return CheckResult{
			Name:   "Tools",
			Status: "error",
			Detail: fmt.Sprintf("not found in PATH: %s", strings.Join(missing, ", ")),
		}
	}
	return CheckResult{Name: "Tools", Status: "ok", Detail: strings.Join(found, ", ")}
}

// checkGame looks for the game process and, when it is running, checks that
// the discovered port serves the leaderboard index.
func checkGame(ctx context.Context, rt *runtime) []CheckResult {
	d := rt.discoverer()
	res, err := d.Discover(ctx, true)
	switch {
	case err != nil:
		return []CheckResult{
			{Name: "Game", Status: "error", Detail: err.Error()},
			{Name: "API", Status: "warning", Detail: "skipped"},
		}
	case !res.Running():
		return []CheckResult{
			{Name: "Game", Status: "warning", Detail: "not running"},
			{Name: "API", Status: "warning", Detail: "skipped (game not running)"},
		}
	}
	game := CheckResult{Name: "Game", Status: "ok", Detail: fmt.Sprintf("pid %d", res.PID)}

	client, err := rt.apiClient(ctx)
	if err != nil {
		return []CheckResult{game, {Name: "API", Status: "error", Detail: err.Error()}}
	}
	ladder, err := client.PrimaryLadder(ctx)
	if err != nil {
		return []CheckResult{game, {Name: "API", Status: "error", Detail: err.Error()}}
	}
	return []CheckResult{game, {
		Name:   "API",
		Status: "ok",
		Detail: fmt.Sprintf("%s (ladder %d, season %d)", client.URL("", nil, 1), ladder.ID, ladder.SeasonID),
	}}
}

func printFixes(cmd *cobra.Command, checks []CheckResult) {
	for _, c := range checks {
		if c.Status == "ok" {
			continue
		}
		switch c.Name {
		case "Tools":
			if hostPlatform == discovery.PlatformWindows {
				fmt.Fprintln(cmd.OutOrStdout(), "\nFix: tasklist and netstat ship with Windows; check that System32 is on PATH.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "\nFix: Install lsof and procps with your package manager.")
			}
		case "Config":
			fmt.Fprintf(cmd.OutOrStdout(), "\nFix: Correct the value in %s or unset the BNETDATA_* variable.\n", config.ConfigPath())
		case "Game":
			if c.Detail == "not running" {
				fmt.Fprintln(cmd.OutOrStdout(), "\nFix: Start StarCraft and log in, then run 'bnetdata doctor' again.")
			}
		case "API":
			if c.Status == "error" {
				fmt.Fprintln(cmd.OutOrStdout(), "\nFix: The game opens its web API a few seconds after login; retry, or raise probe.timeout.")
			}
		}
	}
}
