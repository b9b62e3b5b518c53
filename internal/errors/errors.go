// Package errors defines the error taxonomy shared by spyglass components.
//
// Three failure classes exist: missing required state (ErrNoActiveProgram),
// structurally invalid snapshot input (MalformedSnapshotError), and ill-typed
// caller parameters (InvalidArgumentError). Everything else is either wrapped
// with fmt.Errorf or accumulated as per-entry strings by the callers.
package errors

import (
	"errors"
	"fmt"
)

// ErrNoActiveProgram is returned by operations that need a live program when
// the session has none bound. Absence of a program is otherwise a valid state.
var ErrNoActiveProgram = errors.New("no active program is bound to the session")

// MalformedSnapshotError reports a snapshot payload that parsed as JSON but
// does not satisfy the sync contract. Reason always names the specific defect
// (missing keys, wrong version, wrong container kind) so a caller can fix the
// input by hand.
type MalformedSnapshotError struct {
	Reason string
}

func (e *MalformedSnapshotError) Error() string {
	return "malformed snapshot: " + e.Reason
}

// MalformedSnapshotf constructs a MalformedSnapshotError with a formatted reason.
func MalformedSnapshotf(format string, args ...any) *MalformedSnapshotError {
	return &MalformedSnapshotError{Reason: fmt.Sprintf(format, args...)}
}

// IsMalformedSnapshot reports whether err is a snapshot contract violation.
func IsMalformedSnapshot(err error) bool {
	var target *MalformedSnapshotError
	return errors.As(err, &target)
}

// InvalidArgumentError reports an out-of-range or ill-typed caller-supplied
// parameter. It is raised before any state is touched.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}

// InvalidArgumentf constructs an InvalidArgumentError with a formatted reason.
func InvalidArgumentf(format string, args ...any) *InvalidArgumentError {
	return &InvalidArgumentError{Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidArgument reports whether err is a caller parameter rejection.
func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}
