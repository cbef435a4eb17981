package sandbox

import (
	"regexp"
	"strings"
)

var (
	cdInvocation = regexp.MustCompile(`(?i)\bcd\s+([^;&|\n]+)`)
	standaloneCd = regexp.MustCompile(`(?i)^\s*cd\s+[^;&|\n]+\s*$`)
	quoteChars   = strings.NewReplacer(`"`, "", `'`, "")
)

// ValidateCdCommand checks every cd invocation in a possibly chained command.
//
// All cd targets must resolve under rootDir or the whole command is rejected
// with KindRestrictedDirectory, including targets that an earlier failing
// command would have guarded. Only a command that is nothing but a single cd
// yields NewDir; chained forms such as "cd /tmp && ls" pass but never move the
// session directory.
func ValidateCdCommand(command, currentDir, rootDir string, restricted bool) ValidationResult {
	if !restricted {
		return allowed()
	}

	matches := cdInvocation.FindAllStringSubmatch(command, -1)
	if len(matches) == 0 {
		return allowed()
	}

	root := absClean(rootDir)
	for _, m := range matches {
		target := cdTarget(m[1])
		if !IsWithinRoot(root, resolveAgainst(currentDir, target)) {
			return rejected(KindRestrictedDirectory, target)
		}
	}

	if !IsStandaloneCd(command) {
		return allowed()
	}
	return ValidationResult{
		Valid:  true,
		NewDir: resolveAgainst(currentDir, cdTarget(matches[0][1])),
	}
}

// IsStandaloneCd reports whether command is a single cd with no chaining.
func IsStandaloneCd(command string) bool {
	return standaloneCd.MatchString(command)
}

func cdTarget(arg string) string {
	return quoteChars.Replace(strings.TrimSpace(arg))
}
