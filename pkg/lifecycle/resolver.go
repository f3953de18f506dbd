package lifecycle

import (
	"context"
	"errors"
	"log/slog"
)

// Resolver retires content items whose exact identifier form is not known in
// advance. Given a ContentRef it derives the candidate identifiers and applies
// the terminal operation to each in turn until the underlying resource is
// either deleted or confirmed already absent.
//
// A Resolver holds no state between calls and is safe for concurrent use on
// non-overlapping refs. Concurrent retirement of the same logical resource is
// resolved by the external store; both callers still observe an absent
// resource, though the outcome labels may differ.
type Resolver struct {
	log *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for pre-step and per-candidate reporting.
func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates a Resolver with the given options.
func New(opts ...Option) *Resolver {
	r := &Resolver{log: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Retire guarantees that after it returns with a Retired result, the resource
// behind ref is deleted or confirmed absent.
//
// The optional unpublish pre-step runs first against the raw identifier; any
// outcome is logged and ignored, since its only purpose is to reduce the odds
// that deletion is blocked by publication state. The terminal step then runs
// against each candidate identifier in order: success returns OutcomeDeleted,
// not-found returns OutcomeAlreadyAbsent, and other failures are recorded
// before moving on to the next candidate. When every candidate fails the
// result is OutcomeFailed with one reason per attempt.
//
// Calling Retire twice for the same logical resource is safe: the second call
// observes AlreadyAbsent at the first candidate the store recognizes.
//
// The returned error is non-nil only for contract violations (missing
// terminal operation, empty ref); exhaustion is reported through the Result,
// not the error.
func (r *Resolver) Retire(ctx context.Context, ref ContentRef, ops Operations) (Result, error) {
	if ops.Delete == nil {
		return Result{}, ErrMissingDelete
	}
	if ref.RawID == "" && ref.DocID == "" {
		return Result{}, ErrEmptyRef
	}

	if ops.Unpublish != nil {
		if err := ops.Unpublish(ctx, ref.RawID); err != nil {
			r.log.Debug("unpublish pre-step did not succeed, continuing",
				"kind", ref.Kind, "id", ref.RawID, "error", err)
		} else {
			r.log.Debug("unpublished", "kind", ref.Kind, "id", ref.RawID)
		}
	}

	var attempts []Attempt
	for _, candidate := range Candidates(ref) {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, Attempt{Candidate: candidate, Err: err})
			break
		}

		err := ops.Delete(ctx, candidate)
		switch {
		case err == nil:
			attempts = append(attempts, Attempt{Candidate: candidate})
			r.log.Debug("deleted", "kind", ref.Kind, "id", candidate)
			return Result{Outcome: OutcomeDeleted, Attempts: attempts}, nil
		case errors.Is(err, ErrNotFound):
			attempts = append(attempts, Attempt{Candidate: candidate})
			r.log.Debug("already absent", "kind", ref.Kind, "id", candidate)
			return Result{Outcome: OutcomeAlreadyAbsent, Attempts: attempts}, nil
		default:
			attempts = append(attempts, Attempt{Candidate: candidate, Err: err})
			r.log.Debug("delete attempt failed, trying next candidate",
				"kind", ref.Kind, "id", candidate, "error", err)
		}
	}

	r.log.Warn("retirement exhausted all candidates, manual cleanup needed",
		"kind", ref.Kind, "id", ref.RawID, "attempts", len(attempts))
	return Result{Outcome: OutcomeFailed, Attempts: attempts}, nil
}

// Retire retires ref using a default Resolver. See Resolver.Retire.
func Retire(ctx context.Context, ref ContentRef, ops Operations) (Result, error) {
	return New().Retire(ctx, ref, ops)
}
