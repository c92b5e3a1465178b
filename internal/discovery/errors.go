package discovery

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoCandidates is returned when the target process is running but has no
// loopback ports open yet. It is usually transient: the game opens its API
// socket a few seconds after launch.
var ErrNoCandidates = errors.New("no candidate ports open")

// ExecutionError is returned when a listing command could not be started or
// was killed by a signal.
type ExecutionError struct {
	Command string
	Signal  string
	Err     error
}

func (e *ExecutionError) Error() string {
	if e.Signal != "" {
		return fmt.Sprintf("%s: terminated by signal %s", e.Command, e.Signal)
	}
	return fmt.Sprintf("running %s: %v", e.Command, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// AllPortsFailedError is returned when every candidate port was probed and
// none of them answered like the API.
type AllPortsFailedError struct {
	Failures []ProbeOutcome
}

func (e *AllPortsFailedError) Error() string {
	causes := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		causes = append(causes, fmt.Sprintf("%d: %v", f.Port, f.Err))
	}
	return fmt.Sprintf("all %d candidate ports failed (%s)", len(e.Failures), strings.Join(causes, "; "))
}

// Unwrap exposes the individual probe causes to errors.Is and errors.As.
func (e *AllPortsFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}
