package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrNothingToDo is returned when none of the archive's members were found.
	ErrNothingToDo = errors.New("no bomb appears to have exploded here")

	// ErrAmbiguousOutcome is returned when only some members were found and
	// consolidation was not forced.
	ErrAmbiguousOutcome = errors.New("archive is only partially present")

	// ErrDestinationConflict is returned when the container directory cannot
	// receive the roots without overwriting something.
	ErrDestinationConflict = errors.New("destination conflict")

	// ErrMoveFailed is returned when a root could not be relocated.
	ErrMoveFailed = errors.New("move failed")
)

// AmbiguousError carries the Partial verdict that stopped a consolidation.
type AmbiguousError struct {
	Verdict Verdict
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%v: %d member(s) not found", ErrAmbiguousOutcome, len(e.Verdict.Missing))
}

func (e *AmbiguousError) Is(target error) bool { return target == ErrAmbiguousOutcome }

// ConflictError names the container and, when relevant, the colliding entry.
type ConflictError struct {
	Container string
	Entry     string
	Reason    string
}

func (e *ConflictError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("%v: %s %s", ErrDestinationConflict, e.Container, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s %s", ErrDestinationConflict, e.Container, e.Entry, e.Reason)
}

func (e *ConflictError) Is(target error) bool { return target == ErrDestinationConflict }

// MoveError reports the root that could not be relocated.
type MoveError struct {
	Entry string
	Err   error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrMoveFailed, e.Entry, e.Err)
}

func (e *MoveError) Is(target error) bool { return target == ErrMoveFailed }

func (e *MoveError) Unwrap() error { return e.Err }
