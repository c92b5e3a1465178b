package discovery

import (
	"context"
	"strings"
)

// ProcessRecord is one row of the process listing.
type ProcessRecord struct {
	Owner       string `json:"owner"`
	PID         int    `json:"pid"`
	CommandLine string `json:"command_line"`
}

// ListProcesses runs the platform's process listing and parses it. Rows that
// don't fit the layout are dropped.
func ListProcesses(ctx context.Context, runner Runner, parser ProcessListingParser) ([]ProcessRecord, error) {
	name, args := parser.Command()
	out, err := runner.Run(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	return parser.ParseProcesses(out), nil
}

// FindTargetProcess returns the first record, in listing order, whose command
// line contains any of patterns (case-insensitive). The bool is false when
// nothing matches, which just means the game is not running.
func FindTargetProcess(records []ProcessRecord, patterns []string) (ProcessRecord, bool) {
	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}

	for _, r := range records {
		cmdline := strings.ToLower(r.CommandLine)
		for _, p := range lowered {
			if strings.Contains(cmdline, p) {
				return r, true
			}
		}
	}
	return ProcessRecord{}, false
}
