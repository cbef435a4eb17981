package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
	configpkg "github.com/minhyannv/spawn-go/pkg/config"
)

// cliOptions is the runtime configuration plus the REPL identity.
type cliOptions struct {
	Config      configpkg.Config
	ConfigPath  string
	GuildID     string
	UserID      string
	SessionID   string
	MetricsAddr string
	Watch       bool
}

// parseCLIConfig layers .env, the optional YAML file, the environment and
// flags into runtime options. Flags win over the file.
func parseCLIConfig(args []string, getenv func(string) string, stderr io.Writer) (cliOptions, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("spawn-go", flag.ContinueOnError)
	fs.SetOutput(stderr)

	defaults := configpkg.DefaultConfig()
	var exempt stringSliceFlag

	configPath := fs.String("config", getenv("SPAWN_CONFIG"), "YAML config file (env SPAWN_CONFIG)")
	root := fs.String("root", getenv("SPAWN_ROOT"), "Root directory commands start in (env SPAWN_ROOT)")
	restrict := fs.Bool("restrict", defaults.RestrictDirectory, "Keep cd targets and path arguments inside root")
	mode := fs.String("mode", defaults.CommandFilterMode, "Command filter mode: blacklist or whitelist")
	verbose := fs.Bool("verbose", defaults.Debug, "Verbose debug logging")
	locale := fs.String("locale", defaults.Locale, "Reply locale (zh-CN, en-US)")
	render := fs.Bool("render", defaults.RenderImage, "Render results as a terminal page")
	fs.Var(&exempt, "exempt", "Exempt identity guildID:userID. Repeat this flag for multiple identities")

	opts := cliOptions{}
	fs.StringVar(&opts.GuildID, "guild", "", "Guild id of the REPL user (empty for a direct message)")
	fs.StringVar(&opts.UserID, "user", "local", "User id of the REPL user")
	fs.StringVar(&opts.SessionID, "session", "repl", "Session id keying the working directory")
	fs.StringVar(&opts.MetricsAddr, "metrics_addr", "", "Serve Prometheus metrics on this address (disabled when empty)")
	fs.BoolVar(&opts.Watch, "watch", false, "Reload -config when the file changes")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	cfg := defaults
	opts.ConfigPath = strings.TrimSpace(*configPath)
	if opts.ConfigPath != "" {
		loaded, err := configpkg.Load(opts.ConfigPath)
		if err != nil {
			return cliOptions{}, err
		}
		cfg = loaded
	}
	if opts.Watch && opts.ConfigPath == "" {
		return cliOptions{}, fmt.Errorf("-watch requires -config")
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if r := strings.TrimSpace(*root); r != "" && (set["root"] || cfg.Root == "") {
		cfg.Root = r
	}
	if set["restrict"] {
		cfg.RestrictDirectory = *restrict
	}
	if set["mode"] {
		cfg.CommandFilterMode = *mode
	}
	if set["verbose"] {
		cfg.Debug = *verbose
	}
	if set["locale"] {
		cfg.Locale = *locale
	}
	if set["render"] {
		cfg.RenderImage = *render
	}
	cfg.ExemptUsers = append(cfg.ExemptUsers, exempt.values()...)

	cfg = configpkg.Normalize(cfg)
	if err := cfg.Validate(); err != nil {
		return cliOptions{}, err
	}
	opts.Config = cfg
	return opts, nil
}

// stringSliceFlag supports repeatable -exempt flags.
type stringSliceFlag []string

func (f *stringSliceFlag) String() string {
	if f == nil {
		return ""
	}
	return strings.Join(*f, ",")
}

func (f *stringSliceFlag) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("empty identity")
	}
	if strings.Contains(value, ",") {
		return fmt.Errorf("comma-separated values are not supported for -exempt; repeat the flag instead")
	}
	if !strings.Contains(value, ":") {
		return fmt.Errorf("identity %q must have the form guildID:userID", value)
	}
	*f = append(*f, value)
	return nil
}

func (f stringSliceFlag) values() []string {
	out := make([]string, len(f))
	copy(out, f)
	return out
}
