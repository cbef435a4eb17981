//go:build !unix

package runner

import (
	"os"
	"os/exec"
	"time"
)

func setupProcessGroup(cmd *exec.Cmd) {
	cmd.WaitDelay = 3 * time.Second
}

func signalOf(*os.ProcessState) string {
	return ""
}
