// Package runner spawns validated shell commands and captures their output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	loggerpkg "github.com/minhyannv/spawn-go/pkg/logger"
)

// DefaultTimeout applies when a Request has no timeout.
const DefaultTimeout = 60 * time.Second

// Request describes one command execution.
type Request struct {
	Command string
	// Dir is the working directory; empty means the process directory.
	Dir     string
	Timeout time.Duration
	// Shell overrides the default shell (/bin/sh, or cmd.exe on Windows).
	Shell string
	// Encoding names the output text encoding (utf8, utf16le, ucs2, latin1).
	Encoding string
}

// Result is reported once the process has finished or failed to start.
// Process failures are data, not errors: callers always get output plus
// exit metadata.
type Result struct {
	// ExitCode is -1 when the process did not exit normally.
	ExitCode int    `json:"exit_code"`
	Signal   string `json:"signal,omitempty"`
	TimedOut bool   `json:"timed_out,omitempty"`
	// Output is stdout and stderr combined in arrival order.
	Output    string `json:"output"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, req Request) Result
}

// ExecRunner runs commands through a shell with os/exec.
type ExecRunner struct {
	// Env is the child environment. Nil means SanitizedEnv().
	Env     []string
	Logger  loggerpkg.Logger
	Verbose bool
}

func (r *ExecRunner) debugf(format string, args ...any) {
	loggerpkg.Debugf(r.Verbose, r.Logger, format, args...)
}

// Run executes req.Command with req.Dir as working directory, bounded by
// req.Timeout, and returns combined output decoded from req.Encoding.
func (r *ExecRunner) Run(ctx context.Context, req Request) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	shell, args := ShellCommand(req.Shell, req.Command)
	r.debugf("runner: shell=%s, dir=%s, timeout=%v, command_bytes=%d", shell, req.Dir, timeout, len(req.Command))

	cmd := exec.CommandContext(execCtx, shell, args...)
	cmd.Env = r.Env
	if cmd.Env == nil {
		cmd.Env = SanitizedEnv()
	}
	if req.Dir != "" {
		cmd.Dir = req.Dir
	}
	setupProcessGroup(cmd)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	err := cmd.Run()
	result := Result{ElapsedMs: time.Since(start).Milliseconds()}

	if err != nil {
		result.Error = err.Error()
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			result.Signal = signalOf(exitErr.ProcessState)
		}
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			result.TimedOut = true
			r.debugf("runner: timeout exceeded after %v", timeout)
		}
		r.debugf("runner: error occurred: %v (exit_code=%d, signal=%s)", err, result.ExitCode, result.Signal)
	}

	text, decodeErr := Decode(output.Bytes(), req.Encoding)
	if decodeErr != nil {
		r.debugf("runner: decode %s output: %v", req.Encoding, decodeErr)
		text = output.String()
	}
	result.Output = text

	r.debugf("runner: completed, exit_code=%d, duration=%dms, output=%d bytes", result.ExitCode, result.ElapsedMs, output.Len())
	return result
}

// ShellCommand returns the program and arguments that run command through
// shell, or through the platform default shell when shell is empty.
func ShellCommand(shell, command string) (string, []string) {
	if shell == "" {
		if runtime.GOOS == "windows" {
			shell = "cmd.exe"
		} else {
			shell = "/bin/sh"
		}
	}
	base := strings.ToLower(shell[strings.LastIndexAny(shell, `/\`)+1:])
	if base == "cmd.exe" || base == "cmd" {
		return shell, []string{"/d", "/s", "/c", command}
	}
	return shell, []string{"-c", command}
}

// SanitizedEnv keeps only low-risk environment variables for subprocesses.
func SanitizedEnv() []string {
	allowedPrefixes := []string{
		"PATH=",
		"HOME=",
		"USER=",
		"LOGNAME=",
		"SHELL=",
		"TMPDIR=",
		"TMP=",
		"TEMP=",
		"LANG=",
		"LC_",
		"TERM=",
		"SYSTEMROOT=",
		"COMSPEC=",
	}

	env := make([]string, 0, len(allowedPrefixes))
	for _, kv := range os.Environ() {
		upper := strings.ToUpper(kv)
		for _, prefix := range allowedPrefixes {
			if strings.HasPrefix(upper, prefix) {
				env = append(env, kv)
				break
			}
		}
	}
	return env
}
