package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestParseCLIConfigDefaults(t *testing.T) {
	opts, err := parseCLIConfig(nil, envOf(nil), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "repl", opts.SessionID)
	assert.Equal(t, "local", opts.UserID)
	assert.Empty(t, opts.GuildID)
	assert.Empty(t, opts.ConfigPath)
	assert.False(t, opts.Watch)
	assert.Equal(t, "blacklist", opts.Config.CommandFilterMode)
	assert.Equal(t, "zh-CN", opts.Config.Locale)
	assert.False(t, opts.Config.RestrictDirectory)
}

func TestParseCLIConfigFlags(t *testing.T) {
	opts, err := parseCLIConfig([]string{
		"-root", "/srv/bot",
		"-restrict",
		"-mode", "WHITELIST",
		"-locale", "en-US",
		"-guild", "42",
		"-user", "alice",
		"-exempt", "42:alice",
		"-exempt", "0:bob",
		"-metrics_addr", ":9090",
	}, envOf(map[string]string{"SPAWN_ROOT": "/ignored"}), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "/srv/bot", opts.Config.Root)
	assert.True(t, opts.Config.RestrictDirectory)
	assert.Equal(t, "whitelist", opts.Config.CommandFilterMode)
	assert.Equal(t, "en-US", opts.Config.Locale)
	assert.Equal(t, []string{"42:alice", "0:bob"}, opts.Config.ExemptUsers)
	assert.Equal(t, "42", opts.GuildID)
	assert.Equal(t, "alice", opts.UserID)
	assert.Equal(t, ":9090", opts.MetricsAddr)
}

func TestParseCLIConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spawn.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: /from/file\nrestrict_directory: true\ncommand_filter_mode: whitelist\ncommand_list:\n  - ^ls\n"), 0o600))

	opts, err := parseCLIConfig([]string{"-mode", "blacklist", "-watch"}, envOf(map[string]string{
		"SPAWN_CONFIG": path,
		"SPAWN_ROOT":   "/from/env",
	}), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, path, opts.ConfigPath)
	assert.True(t, opts.Watch)
	assert.Equal(t, "/from/file", opts.Config.Root, "file root wins over env")
	assert.True(t, opts.Config.RestrictDirectory)
	assert.Equal(t, "blacklist", opts.Config.CommandFilterMode, "flag wins over file")
	assert.Equal(t, []string{"^ls"}, opts.Config.CommandList)
}

func TestParseCLIConfigEnvRoot(t *testing.T) {
	opts, err := parseCLIConfig(nil, envOf(map[string]string{"SPAWN_ROOT": "/from/env"}), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", opts.Config.Root)
}

func TestParseCLIConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"watch without config", []string{"-watch"}},
		{"unknown mode", []string{"-mode", "greylist"}},
		{"malformed exempt", []string{"-exempt", "alice"}},
		{"missing config file", []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCLIConfig(tt.args, envOf(nil), io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestStringSliceFlagSetRejectsComma(t *testing.T) {
	var f stringSliceFlag
	assert.Error(t, f.Set("0:a,0:b"))
}

func TestStringSliceFlagSetAcceptsSingleValue(t *testing.T) {
	var f stringSliceFlag
	require.NoError(t, f.Set(" 0:alice "))
	assert.Equal(t, []string{"0:alice"}, f.values())
	assert.Equal(t, "0:alice", f.String())
}
