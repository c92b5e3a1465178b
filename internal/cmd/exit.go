package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/dsmmcken/bnetdata/internal/bnetapi"
	"github.com/dsmmcken/bnetdata/internal/discovery"
	"github.com/dsmmcken/bnetdata/internal/output"
)

// errNotRunning is reported when the game process cannot be found.
var errNotRunning = &ExitError{Code: output.ExitNotFound, Err: errors.New("StarCraft is not running.")}

// ExitError attaches a process exit code to an error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return output.ExitSuccess
	}

	var exitErr *ExitError
	var allFailed *discovery.AllPortsFailedError
	var notFound *bnetapi.PlayerNotFoundError
	var apiErr *bnetapi.APIError
	var netErr net.Error

	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	// AllPortsFailedError may wrap per-probe deadlines; match it first.
	case errors.As(err, &allFailed):
		return output.ExitNetwork
	case errors.Is(err, discovery.ErrNoCandidates):
		return output.ExitNotReady
	case errors.As(err, &notFound):
		return output.ExitNotFound
	case errors.As(err, &apiErr):
		return output.ExitNetwork
	case errors.Is(err, context.Canceled):
		return output.ExitInterrupted
	case errors.Is(err, context.DeadlineExceeded):
		return output.ExitTimeout
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return output.ExitTimeout
		}
		return output.ExitNetwork
	default:
		return output.ExitError
	}
}

// ReportError prints err to w, as a JSON envelope in --json mode, and
// returns the exit code for it.
func ReportError(w io.Writer, err error) int {
	code := ExitCode(err)
	if output.IsJSON() {
		_ = output.PrintError(w, output.CodeForExit(code), err.Error())
	} else {
		fmt.Fprintln(w, output.Errorf("Error: %v", err))
	}
	return code
}
