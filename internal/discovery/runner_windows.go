//go:build windows

package discovery

import (
	"fmt"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// processGroupAttr returns SysProcAttr to create a new process group on Windows.
func processGroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: windows.CREATE_NEW_PROCESS_GROUP}
}

// killProcessGroup kills the process tree on Windows using taskkill.
func killProcessGroup(pid int) error {
	cmd := exec.Command("taskkill", "/F", "/T", "/PID", fmt.Sprintf("%d", pid))
	return cmd.Run()
}

// Windows has no signals; a killed process just reports an exit code.
func signaled(*exec.ExitError) (string, bool) {
	return "", false
}
