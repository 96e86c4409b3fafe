//go:build !windows

package gate

import (
	"os/exec"
	"syscall"
)

// killProcessGroupOnCancel starts the child in its own process group and
// kills the whole group on cancellation, so grandchildren holding the output
// pipes do not keep Wait blocked.
func killProcessGroupOnCancel(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
