//go:build !windows

package discovery

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// processGroupAttr returns SysProcAttr to create a new process group on unix.
func processGroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends SIGKILL to the process group.
func killProcessGroup(pid int) error {
	return unix.Kill(-pid, unix.SIGKILL)
}

func signaled(exitErr *exec.ExitError) (string, bool) {
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return "", false
	}
	return unix.SignalName(ws.Signal()), true
}
