//go:build unix

package llm

import (
	"os/exec"
	"syscall"
)

// configureKill starts the tool in its own process group and kills the whole
// group on cancellation, so wrapper scripts cannot leave children behind.
func configureKill(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
