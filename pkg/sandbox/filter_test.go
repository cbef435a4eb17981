package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePattern(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		wantKind PatternKind
		match    string
		noMatch  string
	}{
		{name: "regex", source: `^\s*rm\s+-rf\b`, wantKind: PatternRegex, match: "rm -rf /", noMatch: "echo rm -rf"},
		{name: "case insensitive", source: `^shutdown`, wantKind: PatternRegex, match: "SHUTDOWN now", noMatch: "echo shutdown"},
		{name: "invalid regex becomes literal", source: `rm (`, wantKind: PatternLiteral, match: "sudo rm ( x", noMatch: "rm x"},
		{name: "unsupported syntax becomes literal", source: `a(?=b)`, wantKind: PatternLiteral, match: "xa(?=b)", noMatch: "ab"},
		{name: "invalid utf8 is inert", source: "\xff", wantKind: PatternInert, noMatch: "\xff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CompilePattern(tt.source)
			assert.Equal(t, tt.wantKind, p.Kind)
			assert.Equal(t, tt.source, p.Source)
			if tt.match != "" {
				assert.True(t, p.Match(tt.match))
			}
			assert.False(t, p.Match(tt.noMatch))
		})
	}
}

func TestCommandFilterBlacklist(t *testing.T) {
	f := NewCommandFilter(Blacklist, []string{`^\s*rm\s+-rf\b`, `^reboot$`})

	assert.True(t, f.Blocked("rm -rf /"))
	assert.True(t, f.Blocked("   rm -rf /   "))
	assert.True(t, f.Blocked("RM -RF /"))
	assert.True(t, f.Blocked("reboot  "))
	assert.False(t, f.Blocked("echo rm -rf"))
	assert.False(t, f.Blocked("ls -la"))

	err := f.Check("rm -rf /")
	require.Error(t, err)
	assert.Equal(t, KindBlockedCommand, KindOf(err))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, `^\s*rm\s+-rf\b`, verr.Target)

	assert.NoError(t, f.Check("ls"))
}

func TestCommandFilterWhitelist(t *testing.T) {
	f := NewCommandFilter(Whitelist, []string{`^ls\b`, `^pwd$`})

	assert.False(t, f.Blocked("ls -la"))
	assert.False(t, f.Blocked("pwd"))
	assert.True(t, f.Blocked("cat /etc/passwd"))
	assert.True(t, f.Blocked("echo ls"))
	assert.Equal(t, KindBlockedCommand, KindOf(f.Check("whoami")))
}

func TestCommandFilterEmptyListDisablesFiltering(t *testing.T) {
	for _, mode := range []FilterMode{Blacklist, Whitelist, ""} {
		f := NewCommandFilter(mode, nil)
		assert.False(t, f.Enabled())
		assert.False(t, f.Blocked("rm -rf /"), mode)
		assert.NoError(t, f.Check("anything"))
	}

	var nilFilter *CommandFilter
	assert.False(t, nilFilter.Blocked("rm -rf /"))
	assert.Equal(t, Blacklist, nilFilter.Mode())
}

func TestCommandFilterInertPatternInWhitelistBlocks(t *testing.T) {
	f := NewCommandFilter(Whitelist, []string{"\xff"})

	assert.True(t, f.Enabled())
	assert.True(t, f.Blocked("ls"))
	assert.Equal(t, []PatternKind{PatternInert}, kinds(f.Patterns()))
}

func TestParseFilterMode(t *testing.T) {
	mode, err := ParseFilterMode("")
	require.NoError(t, err)
	assert.Equal(t, Blacklist, mode)

	mode, err = ParseFilterMode(" Whitelist ")
	require.NoError(t, err)
	assert.Equal(t, Whitelist, mode)

	_, err = ParseFilterMode("greylist")
	assert.Error(t, err)
}

func kinds(patterns []Pattern) []PatternKind {
	out := make([]PatternKind, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, p.Kind)
	}
	return out
}
