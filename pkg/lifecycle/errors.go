package lifecycle

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrNotFound indicates the external store does not know the identifier.
	// Operations wrap or return this to signal confirmed absence.
	ErrNotFound = errors.New("content not found")

	// ErrMissingDelete indicates Retire was called without a terminal step.
	ErrMissingDelete = errors.New("delete operation is required")

	// ErrEmptyRef indicates a ContentRef with no identifier at all.
	ErrEmptyRef = errors.New("content ref has no identifier")
)

// RetireError represents an exhausted retirement: every candidate identifier
// was attempted and every attempt failed.
type RetireError struct {
	Ref      ContentRef
	Attempts []Attempt
}

func (e *RetireError) Error() string {
	return fmt.Sprintf("retire failed for %s %q after %d candidate(s)", e.Ref.Kind, e.Ref.RawID, len(e.Attempts))
}

func (e *RetireError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}
