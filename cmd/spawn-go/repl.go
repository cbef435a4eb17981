package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	loggerpkg "github.com/minhyannv/spawn-go/pkg/logger"
	"github.com/minhyannv/spawn-go/pkg/spawn"
)

// replOptions configures REPL behavior.
type replOptions struct {
	SessionID string
	GuildID   string
	UserID    string
	Verbose   bool
	Logger    loggerpkg.Logger
	// ArtifactDir receives rendered pages. Empty means os.TempDir().
	ArtifactDir string
}

// runREPL reads commands from in and runs them through h until EOF or /quit.
func runREPL(ctx context.Context, h *spawn.Handler, opts replOptions, in io.Reader, out io.Writer) error {
	if h == nil {
		return fmt.Errorf("handler is required")
	}
	if in == nil {
		return fmt.Errorf("input reader is required")
	}
	if out == nil {
		out = io.Discard
	}

	loggerpkg.Debug(opts.Verbose, opts.Logger, "repl start", loggerpkg.Fields{
		"session": opts.SessionID,
		"guild":   opts.GuildID,
		"user":    opts.UserID,
	})

	scanner := bufio.NewScanner(in)
	printWelcome(out)

	for {
		_, _ = fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			handled, shouldQuit := handleCommand(input, h, opts, out)
			if shouldQuit {
				break
			}
			if handled {
				continue
			}
		}

		reply, err := h.Exec(ctx, spawn.Request{
			SessionID: opts.SessionID,
			GuildID:   opts.GuildID,
			UserID:    opts.UserID,
			Command:   commandText(input),
			Send: func(msg string) {
				_, _ = fmt.Fprintln(out, msg)
			},
		})
		if err != nil && !spawn.IsRejection(err) {
			_, _ = fmt.Fprintf(out, "Error: %v\n\n", err)
			continue
		}

		if reply.Artifact != nil {
			path, werr := writeArtifact(opts.ArtifactDir, reply.Artifact.Data)
			if werr != nil {
				_, _ = fmt.Fprintf(out, "Error: %v\n\n", werr)
				continue
			}
			_, _ = fmt.Fprintf(out, "Rendered: %s\n\n", path)
			continue
		}
		_, _ = fmt.Fprintf(out, "%s\n\n", reply.Text)
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// commandText strips an optional "exec " prefix.
func commandText(input string) string {
	if len(input) >= 5 && strings.EqualFold(input[:5], "exec ") {
		return strings.TrimSpace(input[5:])
	}
	if strings.EqualFold(input, "exec") {
		return ""
	}
	return input
}

func writeArtifact(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "spawn-*.html")
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close artifact: %w", err)
	}
	return f.Name(), nil
}

func printWelcome(out io.Writer) {
	_, _ = fmt.Fprintln(out, "=== spawn-go - Interactive Mode ===")
	_, _ = fmt.Fprintln(out, "Type a shell command (optionally prefixed with exec) and press Enter.")
	printHelp(out)
}

func handleCommand(input string, h *spawn.Handler, opts replOptions, out io.Writer) (bool, bool) {
	cmd := strings.ToLower(input)
	switch cmd {
	case "/help", "/h":
		printHelp(out)
		return true, false
	case "/pwd":
		dir, err := h.WorkingDir(opts.SessionID)
		if err != nil {
			_, _ = fmt.Fprintf(out, "Error: %v\n\n", err)
			return true, false
		}
		_, _ = fmt.Fprintf(out, "%s\n\n", dir)
		return true, false
	case "/reset":
		h.Store().Forget(opts.SessionID)
		_, _ = fmt.Fprintln(out, "Working directory reset to root.")
		_, _ = fmt.Fprintln(out)
		return true, false
	case "/quit", "/exit", "/q":
		_, _ = fmt.Fprintln(out, "Goodbye!")
		return true, true
	default:
		// Absolute paths such as /bin/ls run as shell commands.
		if strings.ContainsAny(input[1:], "/ \t") {
			return false, false
		}
		_, _ = fmt.Fprintf(out, "Unknown command: %s. Type /help for available commands.\n\n", input)
		return true, false
	}
}

func printHelp(out io.Writer) {
	_, _ = fmt.Fprintln(out, "Commands:")
	_, _ = fmt.Fprintln(out, "  /help  - Show this help message")
	_, _ = fmt.Fprintln(out, "  /pwd   - Print the session working directory")
	_, _ = fmt.Fprintln(out, "  /reset - Move the session back to root")
	_, _ = fmt.Fprintln(out, "  /quit  - Exit the program")
	_, _ = fmt.Fprintln(out, "  /exit  - Exit the program")
	_, _ = fmt.Fprintln(out)
}
