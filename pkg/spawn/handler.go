// Package spawn implements the exec command: it authorizes a chat user's
// shell command against the sandbox rules, runs it in the session's working
// directory and formats the reply.
package spawn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	configpkg "github.com/minhyannv/spawn-go/pkg/config"
	"github.com/minhyannv/spawn-go/pkg/locale"
	loggerpkg "github.com/minhyannv/spawn-go/pkg/logger"
	"github.com/minhyannv/spawn-go/pkg/metrics"
	"github.com/minhyannv/spawn-go/pkg/render"
	"github.com/minhyannv/spawn-go/pkg/runner"
	"github.com/minhyannv/spawn-go/pkg/sandbox"
	"github.com/minhyannv/spawn-go/pkg/session"
)

// DirectGuildID is the guild part of the identity key for direct messages.
const DirectGuildID = "0"

// Request is one exec invocation.
type Request struct {
	// SessionID keys the working directory store.
	SessionID string
	GuildID   string
	UserID    string
	Command   string
	// Send, when set, receives intermediate messages (the started notice and
	// the exempt notice) as soon as they are produced.
	Send func(msg string)
}

// IdentityKey returns the "guildID:userID" key matched against exempt_users.
func (r Request) IdentityKey() string {
	guild := r.GuildID
	if guild == "" {
		guild = DirectGuildID
	}
	return guild + ":" + r.UserID
}

// Reply is what the user gets back for one request.
type Reply struct {
	// Notices are the intermediate messages in the order they were sent.
	Notices []string
	// Text is the final message. It is empty when Artifact is set.
	Text     string
	Artifact *render.Artifact
	// Result is nil when the command was not run.
	Result *runner.Result
	// NewDir is the committed session directory, if the command moved it.
	NewDir string
}

// State is the data available to the started and finished messages.
type State struct {
	Command  string
	Timeout  time.Duration
	Output   string
	Code     int
	Signal   string
	TimedOut bool
	TimeUsed time.Duration
}

// Handler runs exec requests. It is safe for concurrent use.
type Handler struct {
	mu      sync.RWMutex
	cfg     configpkg.Config
	filter  *sandbox.CommandFilter
	catalog *locale.Catalog

	pinnedCatalog bool
	logger        loggerpkg.Logger
	runner        runner.Runner
	renderer      render.Renderer
	store         *session.Store
}

// New builds a Handler from cfg and optional dependencies.
func New(cfg configpkg.Config, opts ...Option) (*Handler, error) {
	d := deps{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&d)
		}
	}
	if d.logger == nil {
		d.logger = loggerpkg.NopLogger{}
	}
	if d.runner == nil {
		d.runner = &runner.ExecRunner{Logger: d.logger, Verbose: cfg.Debug}
	}
	if d.renderer == nil {
		d.renderer = render.TerminalRenderer{}
	}
	if d.store == nil {
		d.store = session.NewStore()
	}

	h := &Handler{
		catalog:       d.catalog,
		pinnedCatalog: d.catalog != nil,
		logger:        d.logger,
		runner:        d.runner,
		renderer:      d.renderer,
		store:         d.store,
	}
	if err := h.Reload(cfg); err != nil {
		return nil, err
	}
	return h, nil
}

// Reload swaps the active configuration. Filter patterns are compiled once
// here. An invalid configuration leaves the previous one in place.
func (h *Handler) Reload(cfg configpkg.Config) error {
	cfg = configpkg.Normalize(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := cfg.RootDir(); err != nil {
		return err
	}

	catalog := h.currentCatalog()
	if !h.pinnedCatalog {
		loaded, err := locale.Load(cfg.Locale)
		if err != nil {
			return err
		}
		catalog = loaded
	}
	filter := cfg.NewCommandFilter()

	h.mu.Lock()
	h.cfg = cfg
	h.filter = filter
	h.catalog = catalog
	h.mu.Unlock()

	loggerpkg.Debug(cfg.Debug, h.logger, "config loaded", loggerpkg.Fields{
		"root":        cfg.Root,
		"filter_mode": filter.Mode(),
		"patterns":    len(filter.Patterns()),
		"restrict":    cfg.RestrictDirectory,
		"render":      cfg.RenderImage,
		"locale":      catalog.Name(),
	})
	return nil
}

// Config returns the active configuration.
func (h *Handler) Config() configpkg.Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// Store returns the session directory store.
func (h *Handler) Store() *session.Store {
	return h.store
}

// WorkingDir returns the directory the next command of sessionID runs in.
func (h *Handler) WorkingDir(sessionID string) (string, error) {
	cfg := h.Config()
	root, err := cfg.RootDir()
	if err != nil {
		return "", err
	}
	return h.sessionDir(sessionID, root, cfg.RestrictDirectory), nil
}

// sessionDir returns the directory a session runs in. While restricted, a
// stored directory outside root is forgotten and the session restarts at
// root. This happens after Reload moves root, or when a store is shared by
// handlers with different roots.
func (h *Handler) sessionDir(sessionID, rootDir string, restricted bool) string {
	dir := h.store.Current(sessionID, rootDir)
	if !restricted || sandbox.IsWithinRoot(rootDir, dir) {
		return dir
	}
	h.store.Forget(sessionID)
	loggerpkg.Info(h.logger, "session directory outside root, reset", loggerpkg.Fields{
		"session": sessionID,
		"stale":   dir,
		"root":    rootDir,
	})
	return rootDir
}

func (h *Handler) currentCatalog() *locale.Catalog {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.catalog
}

func (h *Handler) snapshot() (configpkg.Config, *sandbox.CommandFilter, *locale.Catalog) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg, h.filter, h.catalog
}

// Exec authorizes and runs one command.
//
// A rejected command returns the localized rejection text with a
// *sandbox.ValidationError and spawns nothing. Failures of the process
// itself are reported in the reply, not as errors.
func (h *Handler) Exec(ctx context.Context, req Request) (Reply, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, filter, catalog := h.snapshot()

	command := strings.TrimSpace(req.Command)
	if command == "" {
		metrics.RecordCommand("empty")
		return Reply{Text: catalog.Text(locale.ExpectText, nil)}, nil
	}

	invocation := uuid.NewString()
	key := req.IdentityKey()
	exempt := cfg.IsExempt(key)

	rootDir, err := cfg.RootDir()
	if err != nil {
		return Reply{}, err
	}
	restricted := !exempt && cfg.RestrictDirectory
	currentDir := h.sessionDir(req.SessionID, rootDir, restricted)

	loggerpkg.Debug(cfg.Debug, h.logger, "exec request", loggerpkg.Fields{
		"invocation": invocation,
		"guild_id":   req.GuildID,
		"user_id":    req.UserID,
		"command":    command,
		"exempt":     exempt,
		"cwd":        currentDir,
	})

	cd, err := h.authorize(command, currentDir, rootDir, filter, exempt, restricted)
	if err != nil {
		kind := sandbox.KindOf(err)
		metrics.RecordCommand("rejected")
		metrics.RecordRejection(string(kind))
		loggerpkg.Info(h.logger, "command rejected", loggerpkg.Fields{
			"invocation": invocation,
			"identity":   key,
			"kind":       kind,
			"reason":     err.Error(),
		})
		return Reply{Text: catalog.Text(string(kind), nil)}, err
	}
	if exempt {
		metrics.RecordExempt()
	}

	var reply Reply
	send := func(msg string) {
		reply.Notices = append(reply.Notices, msg)
		if req.Send != nil {
			req.Send(msg)
		}
	}

	state := State{Command: command, Timeout: cfg.Timeout}
	if !cfg.RenderImage {
		send(catalog.Text(locale.Started, state))
	}

	result := h.runner.Run(ctx, runner.Request{
		Command:  command,
		Dir:      currentDir,
		Timeout:  cfg.Timeout,
		Shell:    cfg.Shell,
		Encoding: cfg.Encoding,
	})
	reply.Result = &result
	metrics.RecordCommand("executed")

	state.Code = result.ExitCode
	state.Signal = result.Signal
	state.TimedOut = result.TimedOut
	state.TimeUsed = time.Duration(result.ElapsedMs) * time.Millisecond
	trimmed := strings.TrimSpace(result.Output)
	state.Output = sandbox.MaskCurlOutput(command, trimmed)
	if state.Output != trimmed {
		metrics.RecordMaskedOutput()
	}
	metrics.ObserveDuration(durationStatus(result), state.TimeUsed)

	loggerpkg.Debug(cfg.Debug, h.logger, "exec result", loggerpkg.Fields{
		"invocation": invocation,
		"exit_code":  result.ExitCode,
		"signal":     result.Signal,
		"timed_out":  result.TimedOut,
		"elapsed_ms": result.ElapsedMs,
		"error":      result.Error,
	})

	if cd.NewDir != "" && result.ExitCode == 0 {
		h.store.Commit(req.SessionID, cd.NewDir)
		reply.NewDir = cd.NewDir
		metrics.RecordDirectoryCommit()
	}

	if exempt {
		send(catalog.Text(locale.ExemptExecuted, state))
	}

	if cfg.RenderImage && h.renderer != nil {
		artifact, err := h.renderer.Render(ctx, currentDir, command, state.Output)
		if err == nil {
			reply.Artifact = &artifact
			return reply, nil
		}
		metrics.RecordRenderFailure()
		loggerpkg.Error(h.logger, "render terminal page failed", loggerpkg.Fields{
			"invocation": invocation,
			"error":      err.Error(),
		})
	}

	reply.Text = catalog.Text(locale.Finished, state)
	return reply, nil
}

// authorize runs the filter, the cd chain check and the path check in that
// order. The first failure wins.
func (h *Handler) authorize(command, currentDir, rootDir string, filter *sandbox.CommandFilter, exempt, restricted bool) (sandbox.ValidationResult, error) {
	if !exempt {
		if err := filter.Check(command); err != nil {
			return sandbox.ValidationResult{}, err
		}
	}

	cd := sandbox.ValidateCdCommand(command, currentDir, rootDir, restricted)
	if err := cd.Err(); err != nil {
		return cd, err
	}

	paths := sandbox.ValidatePathAccess(command, currentDir, rootDir, restricted)
	if err := paths.Err(); err != nil {
		return paths, err
	}
	return cd, nil
}

func durationStatus(result runner.Result) string {
	switch {
	case result.TimedOut:
		return "timeout"
	case result.ExitCode != 0:
		return "error"
	default:
		return "ok"
	}
}

// IsRejection reports whether err is a sandbox rejection.
func IsRejection(err error) bool {
	var verr *sandbox.ValidationError
	return errors.As(err, &verr)
}
