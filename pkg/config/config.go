package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/minhyannv/spawn-go/pkg/sandbox"
	"gopkg.in/yaml.v3"
)

// DefaultTimeout bounds a command when no timeout is configured.
const DefaultTimeout = time.Minute

// Encodings accepted for command output.
var Encodings = []string{"utf8", "utf16le", "latin1", "ucs2"}

// Config holds the runtime configuration of the exec command.
type Config struct {
	// BaseDir anchors a relative Root. Defaults to the process working directory.
	BaseDir string `yaml:"base_dir,omitempty"`
	// Root is the working path commands start in.
	Root     string        `yaml:"root"`
	Shell    string        `yaml:"shell,omitempty"`
	Encoding string        `yaml:"encoding"`
	Timeout  time.Duration `yaml:"timeout"`
	Debug    bool          `yaml:"debug"`
	Locale   string        `yaml:"locale"`

	RenderImage bool `yaml:"render_image"`

	// ExemptUsers lists "guildID:userID" keys that bypass every filter.
	// Direct messages use guild id 0.
	ExemptUsers []string `yaml:"exempt_users"`
	// BlockedCommands is the legacy pattern list, used when CommandList is empty.
	BlockedCommands   []string `yaml:"blocked_commands"`
	RestrictDirectory bool     `yaml:"restrict_directory"`
	Authority         int      `yaml:"authority"`
	CommandFilterMode string   `yaml:"command_filter_mode"`
	CommandList       []string `yaml:"command_list"`

	// SudoPassword is accepted so older configs still load. It is never read:
	// commands are not elevated.
	SudoPassword string `yaml:"sudo_password,omitempty"`
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return Config{
		BaseDir:           wd,
		Root:              "",
		Encoding:          "utf8",
		Timeout:           DefaultTimeout,
		Locale:            "zh-CN",
		ExemptUsers:       []string{},
		BlockedCommands:   []string{},
		Authority:         4,
		CommandFilterMode: string(sandbox.Blacklist),
		CommandList:       []string{},
	}
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.BaseDir = strings.TrimSpace(cfg.BaseDir)
	cfg.Root = strings.TrimSpace(cfg.Root)
	cfg.Shell = strings.TrimSpace(cfg.Shell)
	cfg.Encoding = strings.ToLower(strings.TrimSpace(cfg.Encoding))
	cfg.Locale = strings.TrimSpace(cfg.Locale)
	cfg.CommandFilterMode = strings.ToLower(strings.TrimSpace(cfg.CommandFilterMode))

	if cfg.Encoding == "" {
		cfg.Encoding = "utf8"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CommandFilterMode == "" {
		cfg.CommandFilterMode = string(sandbox.Blacklist)
	}
	if cfg.Authority <= 0 {
		cfg.Authority = 4
	}

	cfg.ExemptUsers = compact(cfg.ExemptUsers)
	// Patterns are kept verbatim; whitespace can be significant in a regex.
	cfg.BlockedCommands = dropEmpty(cfg.BlockedCommands)
	cfg.CommandList = dropEmpty(cfg.CommandList)
	return cfg
}

// Validate reports configuration values that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if _, err := sandbox.ParseFilterMode(c.CommandFilterMode); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains(Encodings, c.Encoding) {
		errs = append(errs, fmt.Errorf("unsupported encoding %q (want one of %s)", c.Encoding, strings.Join(Encodings, ", ")))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative: %s", c.Timeout))
	}
	return errors.Join(errs...)
}

// FilterMode returns the parsed filter mode, defaulting to blacklist.
func (c Config) FilterMode() sandbox.FilterMode {
	mode, err := sandbox.ParseFilterMode(c.CommandFilterMode)
	if err != nil {
		return sandbox.Blacklist
	}
	return mode
}

// FilterList returns CommandList when it is non-empty, else BlockedCommands.
func (c Config) FilterList() []string {
	if len(c.CommandList) > 0 {
		return c.CommandList
	}
	return c.BlockedCommands
}

// NewCommandFilter compiles the active pattern list.
func (c Config) NewCommandFilter() *sandbox.CommandFilter {
	return sandbox.NewCommandFilter(c.FilterMode(), c.FilterList())
}

// RootDir resolves Root against BaseDir into an absolute path.
func (c Config) RootDir() (string, error) {
	root := c.Root
	if !filepath.IsAbs(root) {
		root = filepath.Join(c.BaseDir, root)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root %q: %w", c.Root, err)
	}
	return abs, nil
}

// IsExempt reports whether the "guildID:userID" key bypasses all filters.
func (c Config) IsExempt(key string) bool {
	return slices.Contains(c.ExemptUsers, key)
}

// Load reads a YAML file on top of DefaultConfig, then normalizes and validates it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	cfg = Normalize(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func dropEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
