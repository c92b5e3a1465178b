package discovery

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// Runner executes a listing command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs listing commands on the host. Each command gets its own
// process group so a cancelled context takes down anything it spawned.
type ExecRunner struct{}

// Run starts the command and waits for it. A non-zero exit code is not an
// error: lsof exits 1 when the process has no sockets. Failing to start, being
// killed by a signal, or being cancelled yields an *ExecutionError.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")

	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = processGroupAttr()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", &ExecutionError{Command: cmdline, Err: err}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		_ = killProcessGroup(cmd.Process.Pid)
		<-done
		return "", &ExecutionError{Command: cmdline, Err: ctx.Err()}
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", &ExecutionError{Command: cmdline, Err: err}
		}
		if sig, ok := signaled(exitErr); ok {
			return "", &ExecutionError{Command: cmdline, Signal: sig, Err: err}
		}
	}
	return stdout.String(), nil
}
