//go:build unix

package runner

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// processGroupWaitDelay bounds pipe reads after the group has been killed.
const processGroupWaitDelay = 3 * time.Second

// setupProcessGroup runs cmd in its own session and kills the whole group on
// cancellation, so grandchildren cannot hold the output pipe open.
func setupProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true

	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return os.ErrProcessDone
		}
		pid := cmd.Process.Pid
		// kill(-1) and kill(0) would hit unrelated processes.
		if pid <= 1 {
			return os.ErrProcessDone
		}
		if err := unix.Kill(-pid, unix.SIGKILL); err != nil {
			if errors.Is(err, unix.ESRCH) {
				return os.ErrProcessDone
			}
			return err
		}
		return nil
	}
	cmd.WaitDelay = processGroupWaitDelay
}

// signalOf names the signal that terminated the process, e.g. "SIGKILL".
func signalOf(state *os.ProcessState) string {
	if state == nil {
		return ""
	}
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return ""
	}
	if name := unix.SignalName(ws.Signal()); name != "" {
		return name
	}
	return ws.Signal().String()
}
