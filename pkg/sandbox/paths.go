package sandbox

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	operatorToken = regexp.MustCompile(`^[|&><]+$`)
	flagToken     = regexp.MustCompile(`^-{1,2}[a-zA-Z0-9][\w-]*$`)
	envVarToken   = regexp.MustCompile(`^\$[A-Za-z_][A-Za-z0-9_]*$`)
	drivePrefix   = regexp.MustCompile(`^[A-Za-z]:[\\/]`)
)

// userHomeDir is swapped in tests.
var userHomeDir = os.UserHomeDir

// IsPathLike reports whether a token plausibly names a filesystem path.
func IsPathLike(token string) bool {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return false
	}
	if operatorToken.MatchString(trimmed) || flagToken.MatchString(trimmed) || envVarToken.MatchString(trimmed) {
		return false
	}

	normalized := StripQuotes(trimmed)
	return drivePrefix.MatchString(normalized) ||
		strings.HasPrefix(normalized, "/") ||
		strings.HasPrefix(normalized, "~") ||
		strings.HasPrefix(normalized, "..") ||
		strings.HasPrefix(normalized, "./") ||
		strings.ContainsAny(normalized, `/\`)
}

// ExtractPathCandidates returns the path-like tokens of a command in order,
// duplicates kept. For KEY=VALUE tokens the value is tested as well, so an
// assignment such as FOO=/etc yields both the token and /etc.
func ExtractPathCandidates(command string) []string {
	var candidates []string
	for _, value := range TokenValues(command) {
		normalized := StripQuotes(value)
		if IsPathLike(normalized) {
			candidates = append(candidates, normalized)
		}

		if eq := strings.IndexByte(normalized, '='); eq > 0 {
			value := normalized[eq+1:]
			if IsPathLike(value) {
				candidates = append(candidates, value)
			}
		}
	}
	return candidates
}

// ResolveCandidatePath turns a candidate into a clean absolute path. A leading
// ~ is replaced by the user's home directory when it is known; otherwise the
// text is resolved against currentDir as is. Symlinks are not followed.
func ResolveCandidatePath(candidate, currentDir string) string {
	cleaned := StripQuotes(strings.TrimSpace(candidate))

	if strings.HasPrefix(cleaned, "~") {
		if home, err := userHomeDir(); err == nil && home != "" {
			rest := strings.TrimLeft(cleaned[1:], `/\`)
			return absClean(filepath.Join(home, rest))
		}
	}

	return resolveAgainst(currentDir, cleaned)
}

// IsWithinRoot reports whether target is root itself or lexically below it.
func IsWithinRoot(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	if rel == "." || rel == "" {
		return true
	}
	return !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
}

// ValidatePathAccess rejects a command with KindRestrictedPath when any of
// its path candidates resolves outside rootDir. It always passes when
// restricted is false.
func ValidatePathAccess(command, currentDir, rootDir string, restricted bool) ValidationResult {
	if !restricted {
		return allowed()
	}

	root := absClean(rootDir)
	for _, candidate := range ExtractPathCandidates(command) {
		resolved := ResolveCandidatePath(candidate, currentDir)
		if !IsWithinRoot(root, resolved) {
			return rejected(KindRestrictedPath, candidate)
		}
	}
	return allowed()
}

func resolveAgainst(base, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return absClean(filepath.Join(base, target))
}

func absClean(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
