package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// Exit codes
const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitNetwork     = 2
	ExitTimeout     = 3
	ExitNotFound    = 4
	ExitNotReady    = 5
	ExitInterrupted = 130
)

// Error codes used in JSON error envelopes.
const (
	CodeError       = "error"
	CodeNetwork     = "network_error"
	CodeTimeout     = "timeout"
	CodeNotFound    = "not_found"
	CodeNotReady    = "not_ready"
	CodeInterrupted = "interrupted"
)

// CodeForExit returns the envelope code for an exit code.
func CodeForExit(exit int) string {
	switch exit {
	case ExitNetwork:
		return CodeNetwork
	case ExitTimeout:
		return CodeTimeout
	case ExitNotFound:
		return CodeNotFound
	case ExitNotReady:
		return CodeNotReady
	case ExitInterrupted:
		return CodeInterrupted
	default:
		return CodeError
	}
}

var (
	flagJSON    bool
	flagQuiet   bool
	flagVerbose bool
	flagNoColor bool
)

// SetFlags is called by the root command's PersistentPreRun to propagate flag values.
func SetFlags(jsonMode, quiet, verbose, noColor bool) {
	flagJSON = jsonMode
	flagQuiet = quiet
	flagVerbose = verbose
	flagNoColor = noColor
}

// IsJSON returns true when --json mode is active.
func IsJSON() bool { return flagJSON }

// IsQuiet returns true when --quiet mode is active.
func IsQuiet() bool { return flagQuiet }

// IsVerbose returns true when --verbose mode is active.
func IsVerbose() bool { return flagVerbose }

// IsNoColor returns true when --no-color mode is active.
func IsNoColor() bool { return flagNoColor }

// PrintJSON marshals v as JSON and writes it to w.
func PrintJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// PrintError writes a JSON error envelope to w.
func PrintError(w io.Writer, code string, message string) error {
	return PrintJSON(w, map[string]string{
		"error":   code,
		"message": message,
	})
}
