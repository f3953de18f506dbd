package lifecycle

import "context"

// Kind identifies which lifecycle operations apply to a content item.
type Kind string

// Content kind constants (typed).
const (
	KindImage    Kind = "image"
	KindFile     Kind = "file"
	KindImageTag Kind = "imageTag"
	KindFileTag  Kind = "fileTag"
	KindPage     Kind = "page"
	KindUser     Kind = "user"
	KindGlobal   Kind = "global"
)

// ContentRef is a logical reference to one stored content item.
//
// RawID is the identifier as originally obtained, possibly a compound form
// carrying a locale and mode suffix (e.g. "abc:en:published"). It is never
// mutated; candidate identifiers are derived values. DocID, when known,
// is the stable document identifier independent of draft/published state.
type ContentRef struct {
	RawID string
	Kind  Kind
	DocID string
}

// Operation performs one state-changing call against the external store for
// the given identifier. A nil return means the call succeeded. An error
// matching ErrNotFound means the store does not know the identifier. Any
// other error is a per-candidate failure.
type Operation func(ctx context.Context, id string) error

// Operations bundles the lifecycle steps available for a content kind.
// Delete is the required terminal step. Unpublish is an optional pre-step;
// its outcome never affects retirement.
type Operations struct {
	Unpublish Operation
	Delete    Operation
}

// Outcome is the domain type for retirement results.
type Outcome string

// Outcome constants (typed).
const (
	// OutcomeDeleted means the terminal step succeeded for one candidate.
	OutcomeDeleted Outcome = "deleted"
	// OutcomeAlreadyAbsent means the store reported not-found, which the
	// caller treats as a successful cleanup.
	OutcomeAlreadyAbsent Outcome = "already_absent"
	// OutcomeFailed means every candidate was attempted without success.
	OutcomeFailed Outcome = "failed"
)

// Attempt records one terminal-step invocation against one candidate id.
type Attempt struct {
	Candidate string
	Err       error
}

// Result reports how a retirement resolved.
//
// For OutcomeFailed, Attempts holds one entry per candidate attempted, in
// order, each carrying the failure reason. For the other outcomes Attempts
// covers the candidates tried up to and including the deciding call.
type Result struct {
	Outcome  Outcome
	Attempts []Attempt
}

// Reasons returns the per-candidate failure messages in attempt order.
func (r Result) Reasons() []string {
	reasons := make([]string, 0, len(r.Attempts))
	for _, a := range r.Attempts {
		if a.Err != nil {
			reasons = append(reasons, a.Err.Error())
		}
	}
	return reasons
}

// Retired reports whether the resource is confirmed gone.
func (r Result) Retired() bool {
	return r.Outcome == OutcomeDeleted || r.Outcome == OutcomeAlreadyAbsent
}

// AsError converts an exhausted result into a *RetireError carrying every
// attempt. It returns nil for the successful outcomes.
func (r Result) AsError(ref ContentRef) error {
	if r.Outcome != OutcomeFailed {
		return nil
	}
	return &RetireError{Ref: ref, Attempts: r.Attempts}
}
