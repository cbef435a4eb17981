//go:build unix

package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerCapturesOutput(t *testing.T) {
	r := &ExecRunner{}

	res := r.Run(context.Background(), Request{Command: "echo hello; echo oops 1>&2"})

	assert.Equal(t, 0, res.ExitCode)
	assert.Empty(t, res.Signal)
	assert.False(t, res.TimedOut)
	assert.Contains(t, res.Output, "hello\n")
	assert.Contains(t, res.Output, "oops\n")
	assert.GreaterOrEqual(t, res.ElapsedMs, int64(0))
}

func TestExecRunnerExitCode(t *testing.T) {
	res := (&ExecRunner{}).Run(context.Background(), Request{Command: "exit 3"})

	assert.Equal(t, 3, res.ExitCode)
	assert.NotEmpty(t, res.Error)
}

func TestExecRunnerWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0o644))

	res := (&ExecRunner{}).Run(context.Background(), Request{Command: "ls", Dir: dir})

	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "marker.txt", strings.TrimSpace(res.Output))
}

func TestExecRunnerMissingDir(t *testing.T) {
	res := (&ExecRunner{}).Run(context.Background(), Request{Command: "true", Dir: filepath.Join(t.TempDir(), "missing")})

	assert.Equal(t, -1, res.ExitCode)
	assert.NotEmpty(t, res.Error)
}

func TestExecRunnerTimeout(t *testing.T) {
	start := time.Now()
	res := (&ExecRunner{}).Run(context.Background(), Request{Command: "sleep 5", Timeout: 200 * time.Millisecond})

	assert.True(t, res.TimedOut)
	assert.Equal(t, -1, res.ExitCode)
	assert.Equal(t, "SIGKILL", res.Signal)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestExecRunnerShellOverride(t *testing.T) {
	res := (&ExecRunner{}).Run(context.Background(), Request{Command: "echo $0", Shell: "/bin/sh"})

	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "/bin/sh", strings.TrimSpace(res.Output))
}

func TestExecRunnerEnv(t *testing.T) {
	res := (&ExecRunner{Env: []string{"SPAWN_TEST=ok"}}).Run(context.Background(), Request{Command: "echo $SPAWN_TEST"})

	assert.Equal(t, "ok", strings.TrimSpace(res.Output))
}

func TestExecRunnerLatin1(t *testing.T) {
	res := (&ExecRunner{}).Run(context.Background(), Request{Command: `printf '\351'`, Encoding: "latin1"})

	assert.Equal(t, "é", res.Output)
}
