//go:build unix

package oracle

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// killProcessGroupOnCancel starts the child in a new process group and makes
// context cancellation kill the whole group, so helpers forked by the oracle
// do not outlive the probe.
func killProcessGroupOnCancel(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
}
