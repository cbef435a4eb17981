package sandbox

import (
	"fmt"
	"regexp"
	"strings"
)

// FilterMode selects how the command filter treats pattern hits.
type FilterMode string

const (
	// Blacklist blocks a command when any pattern matches.
	Blacklist FilterMode = "blacklist"
	// Whitelist blocks a command when no pattern matches.
	Whitelist FilterMode = "whitelist"
)

// ParseFilterMode parses a configured mode. An empty string means Blacklist.
func ParseFilterMode(s string) (FilterMode, error) {
	switch FilterMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Blacklist:
		return Blacklist, nil
	case Whitelist:
		return Whitelist, nil
	default:
		return "", fmt.Errorf("unknown command filter mode: %q", s)
	}
}

// PatternKind tells how a configured pattern string was compiled.
type PatternKind int

const (
	// PatternInert never matches.
	PatternInert PatternKind = iota
	// PatternRegex is the configured text compiled as a regular expression.
	PatternRegex
	// PatternLiteral is the configured text matched literally, used when it
	// is not a valid regular expression.
	PatternLiteral
)

func (k PatternKind) String() string {
	switch k {
	case PatternRegex:
		return "regex"
	case PatternLiteral:
		return "literal"
	default:
		return "inert"
	}
}

// Pattern is one compiled filter entry. Matching is case-insensitive.
type Pattern struct {
	Source string
	Kind   PatternKind
	re     *regexp.Regexp
}

// CompilePattern compiles a configured entry. Invalid regular expressions
// fall back to a literal match, and anything that still fails to compile
// becomes inert. It never returns an error.
func CompilePattern(source string) Pattern {
	if re, err := regexp.Compile("(?i)" + source); err == nil {
		return Pattern{Source: source, Kind: PatternRegex, re: re}
	}
	if re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(source)); err == nil {
		return Pattern{Source: source, Kind: PatternLiteral, re: re}
	}
	return Pattern{Source: source, Kind: PatternInert}
}

// Match reports whether the pattern hits anywhere in command.
func (p Pattern) Match(command string) bool {
	if p.re == nil {
		return false
	}
	return p.re.MatchString(command)
}

// CommandFilter evaluates commands against a compiled blacklist or whitelist.
// The zero value and a filter without patterns allow everything.
type CommandFilter struct {
	mode     FilterMode
	patterns []Pattern
}

// NewCommandFilter compiles list once. An empty list disables filtering
// regardless of mode.
func NewCommandFilter(mode FilterMode, list []string) *CommandFilter {
	if mode == "" {
		mode = Blacklist
	}
	patterns := make([]Pattern, 0, len(list))
	for _, entry := range list {
		patterns = append(patterns, CompilePattern(entry))
	}
	return &CommandFilter{mode: mode, patterns: patterns}
}

// Mode returns the configured filter mode.
func (f *CommandFilter) Mode() FilterMode {
	if f == nil || f.mode == "" {
		return Blacklist
	}
	return f.mode
}

// Patterns returns a copy of the compiled patterns.
func (f *CommandFilter) Patterns() []Pattern {
	if f == nil {
		return nil
	}
	out := make([]Pattern, len(f.patterns))
	copy(out, f.patterns)
	return out
}

// Enabled reports whether the filter has any pattern to evaluate.
func (f *CommandFilter) Enabled() bool {
	return f != nil && len(f.patterns) > 0
}

// Blocked reports whether command must be rejected.
func (f *CommandFilter) Blocked(command string) bool {
	blocked, _ := f.evaluate(command)
	return blocked
}

// Check returns a KindBlockedCommand *ValidationError when command is blocked.
// In blacklist mode the error names the pattern that hit.
func (f *CommandFilter) Check(command string) error {
	blocked, hit := f.evaluate(command)
	if !blocked {
		return nil
	}
	return &ValidationError{Kind: KindBlockedCommand, Target: hit}
}

func (f *CommandFilter) evaluate(command string) (bool, string) {
	if !f.Enabled() {
		return false, ""
	}

	trimmed := strings.TrimSpace(command)
	hit, source := false, ""
	for _, p := range f.patterns {
		if p.Match(trimmed) {
			hit, source = true, p.Source
			break
		}
	}

	if f.Mode() == Whitelist {
		return !hit, ""
	}
	return hit, source
}
