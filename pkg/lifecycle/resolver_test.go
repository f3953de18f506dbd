package lifecycle_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/cms-check/pkg/lifecycle"
)

func quietResolver() *lifecycle.Resolver {
	return lifecycle.New(lifecycle.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// opRecorder builds an Operation that records the ids it was called with and
// answers from a per-id script.
type opRecorder struct {
	calls   []string
	results map[string]error
	always  error
}

func (o *opRecorder) op() lifecycle.Operation {
	return func(_ context.Context, id string) error {
		o.calls = append(o.calls, id)
		if o.results != nil {
			if err, ok := o.results[id]; ok {
				return err
			}
		}
		return o.always
	}
}

func TestRetireRequiresDelete(t *testing.T) {
	_, err := quietResolver().Retire(context.Background(),
		lifecycle.ContentRef{RawID: "abc", Kind: lifecycle.KindImage},
		lifecycle.Operations{})
	assert.ErrorIs(t, err, lifecycle.ErrMissingDelete)
}

func TestRetireRequiresIdentifier(t *testing.T) {
	del := &opRecorder{}
	_, err := quietResolver().Retire(context.Background(),
		lifecycle.ContentRef{Kind: lifecycle.KindImage},
		lifecycle.Operations{Delete: del.op()})
	assert.ErrorIs(t, err, lifecycle.ErrEmptyRef)
	assert.Empty(t, del.calls)
}

func TestRetireDocIDTriedFirst(t *testing.T) {
	del := &opRecorder{results: map[string]error{"abc": nil}, always: errors.New("wrong form")}

	res, err := quietResolver().Retire(context.Background(),
		lifecycle.ContentRef{RawID: "abc:en:published", DocID: "abc", Kind: lifecycle.KindImage},
		lifecycle.Operations{Delete: del.op()})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeDeleted, res.Outcome)
	assert.Equal(t, []string{"abc"}, del.calls, "stable doc id must be attempted before derived forms")
}

func TestRetireShortCircuitsOnSuccess(t *testing.T) {
	del := &opRecorder{}

	res, err := quietResolver().Retire(context.Background(),
		lifecycle.ContentRef{RawID: "xyz:en:published", Kind: lifecycle.KindPage},
		lifecycle.Operations{Delete: del.op()})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeDeleted, res.Outcome)
	assert.Len(t, del.calls, 1)
	assert.True(t, res.Retired())
}

func TestRetireShortCircuitsOnNotFound(t *testing.T) {
	del := &opRecorder{always: lifecycle.ErrNotFound}

	res, err := quietResolver().Retire(context.Background(),
		lifecycle.ContentRef{RawID: "xyz:en:published", Kind: lifecycle.KindPage},
		lifecycle.Operations{Delete: del.op()})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeAlreadyAbsent, res.Outcome)
	assert.Equal(t, []string{"xyz:en:draft"}, del.calls)
	assert.True(t, res.Retired())
}

func TestRetireFallsThroughToLaterCandidate(t *testing.T) {
	del := &opRecorder{
		results: map[string]error{
			"xyz:en:draft": errors.New("invalid mode for current state"),
			"xyz":          nil,
		},
	}

	res, err := quietResolver().Retire(context.Background(),
		lifecycle.ContentRef{RawID: "xyz:en:published", Kind: lifecycle.KindPage},
		lifecycle.Operations{Delete: del.op()})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeDeleted, res.Outcome)
	assert.Equal(t, []string{"xyz:en:draft", "xyz"}, del.calls)
}

func TestRetireAggregatesAllFailures(t *testing.T) {
	del := &opRecorder{
		results: map[string]error{
			"q":              errors.New("409"),
			"q:en:draft":     errors.New("409"),
			"q:en:published": errors.New("500"),
		},
	}

	res, err := quietResolver().Retire(context.Background(),
		lifecycle.ContentRef{RawID: "q:en:published", DocID: "q", Kind: lifecycle.KindFile},
		lifecycle.Operations{Delete: del.op()})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeFailed, res.Outcome)
	assert.Equal(t, []string{"409", "409", "500"}, res.Reasons())
	assert.Equal(t, []string{"q", "q:en:draft", "q:en:published"}, del.calls)
	assert.False(t, res.Retired())
}

func TestRetireUnpublishNeverBlocks(t *testing.T) {
	unpub := &opRecorder{always: errors.New("session expired")}
	del := &opRecorder{}

	res, err := quietResolver().Retire(context.Background(),
		lifecycle.ContentRef{RawID: "doc:en:published", Kind: lifecycle.KindImage},
		lifecycle.Operations{Unpublish: unpub.op(), Delete: del.op()})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeDeleted, res.Outcome)
	assert.Equal(t, []string{"doc:en:published"}, unpub.calls, "unpublish uses the raw id as obtained")
	assert.NotEmpty(t, del.calls)
}

func TestRetireIdempotent(t *testing.T) {
	// Minimal backing store: first delete removes the doc, later deletes
	// report not-found for every identifier form.
	present := map[string]bool{"doc": true, "doc:en:draft": true, "doc:en:published": true}
	del := func(_ context.Context, id string) error {
		if !present[id] {
			return fmt.Errorf("delete %q: %w", id, lifecycle.ErrNotFound)
		}
		for k := range present {
			present[k] = false
		}
		return nil
	}

	ref := lifecycle.ContentRef{RawID: "doc:en:published", DocID: "doc", Kind: lifecycle.KindImage}
	ops := lifecycle.Operations{Delete: del}
	r := quietResolver()

	first, err := r.Retire(context.Background(), ref, ops)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeDeleted, first.Outcome)

	second, err := r.Retire(context.Background(), ref, ops)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeAlreadyAbsent, second.Outcome)
}

func TestRetireStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	del := &opRecorder{}
	del.results = map[string]error{
		"q": errors.New("409"),
	}
	del.always = errors.New("should not be reached")

	// Cancel after the first attempt by wrapping the recorded operation.
	inner := del.op()
	wrapped := func(ctx context.Context, id string) error {
		err := inner(ctx, id)
		cancel()
		return err
	}

	res, err := quietResolver().Retire(ctx,
		lifecycle.ContentRef{RawID: "q:en:published", DocID: "q", Kind: lifecycle.KindFile},
		lifecycle.Operations{Delete: wrapped})

	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeFailed, res.Outcome)
	assert.Equal(t, []string{"q"}, del.calls, "no further candidates after cancellation")
	require.Len(t, res.Attempts, 2)
	assert.ErrorIs(t, res.Attempts[1].Err, context.Canceled)
}

func TestRetirePackageConvenience(t *testing.T) {
	del := &opRecorder{}
	res, err := lifecycle.Retire(context.Background(),
		lifecycle.ContentRef{RawID: "id1", Kind: lifecycle.KindUser},
		lifecycle.Operations{Delete: del.op()})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeDeleted, res.Outcome)
}

func TestResultAsError(t *testing.T) {
	ref := lifecycle.ContentRef{RawID: "x", Kind: lifecycle.KindPage}

	ok := lifecycle.Result{Outcome: lifecycle.OutcomeDeleted}
	assert.NoError(t, ok.AsError(ref))

	boom := errors.New("500")
	failed := lifecycle.Result{
		Outcome:  lifecycle.OutcomeFailed,
		Attempts: []lifecycle.Attempt{{Candidate: "x", Err: boom}},
	}
	err := failed.AsError(ref)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestRetireErrorUnwrapsAttempts(t *testing.T) {
	boom := errors.New("backend exploded")
	e := &lifecycle.RetireError{
		Ref:      lifecycle.ContentRef{RawID: "x", Kind: lifecycle.KindPage},
		Attempts: []lifecycle.Attempt{{Candidate: "x", Err: boom}},
	}
	assert.ErrorIs(t, e, boom)
	assert.Contains(t, e.Error(), "page")
}
