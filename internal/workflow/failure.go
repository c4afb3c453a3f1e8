// Package workflow implements the git merge and release procedures run by
// the merge and release tasks.
//
// Expected conditions such as a dirty tree, an unknown branch or a declined
// confirmation are reported as *Failure values. Anything else, typically a
// git or bump subprocess exiting non-zero, is returned as an ordinary error.
// Every procedure that checks out another branch returns to the branch it
// started on before it returns, whatever the outcome.
package workflow

import (
	"errors"
	"fmt"
)

// Reason classifies a guard failure.
type Reason string

const (
	ReasonDirtyTree        Reason = "dirty-tree"
	ReasonUnknownBranch    Reason = "unknown-branch"
	ReasonSameBranch       Reason = "same-branch"
	ReasonNothingToRelease Reason = "nothing-to-release"
	ReasonInvalidPart      Reason = "invalid-part"
	ReasonDeclined         Reason = "declined"
)

// Failure is an expected, user-actionable outcome that stopped a workflow
// before it changed anything it should not have.
type Failure struct {
	Reason  Reason
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

func fail(reason Reason, format string, args ...any) *Failure {
	return &Failure{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// IsFailure reports whether err is, or wraps, a *Failure.
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// ReasonOf returns the reason of the *Failure in err's chain, or "".
func ReasonOf(err error) Reason {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason
	}
	return ""
}
