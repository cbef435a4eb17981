package sandbox

import (
	"errors"
	"fmt"
)

// ErrorKind identifies why a command was rejected before execution.
type ErrorKind string

const (
	KindBlockedCommand      ErrorKind = "blocked-command"
	KindRestrictedDirectory ErrorKind = "restricted-directory"
	KindRestrictedPath      ErrorKind = "restricted-path"
)

// ValidationError reports a rejected command. Rejections are recoverable and
// always happen before any process is spawned.
type ValidationError struct {
	Kind ErrorKind
	// Target is the offending path or pattern, when one is known.
	Target string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Target)
	}
	return string(e.Kind)
}

// KindOf returns the rejection kind carried by err, or "" when err is not a
// ValidationError.
func KindOf(err error) ErrorKind {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return ""
}

// ValidationResult is the outcome of the containment and cd checks.
type ValidationResult struct {
	Valid bool
	// NewDir is set only for a standalone cd whose target stays under root.
	NewDir string
	Kind   ErrorKind
	Target string
}

// Err converts an invalid result into a *ValidationError. Valid results yield nil.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Kind: r.Kind, Target: r.Target}
}

func allowed() ValidationResult {
	return ValidationResult{Valid: true}
}

func rejected(kind ErrorKind, target string) ValidationResult {
	return ValidationResult{Kind: kind, Target: target}
}
