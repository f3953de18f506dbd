package check_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/cms-check/pkg/aposclient"
	"github.com/tendant/cms-check/pkg/aposclient/apostest"
	"github.com/tendant/cms-check/pkg/check"
	"github.com/tendant/cms-check/pkg/lifecycle"
)

func newRunner(t *testing.T, out io.Writer) (*check.Runner, *apostest.Server) {
	t.Helper()
	srv := apostest.NewServer()
	t.Cleanup(srv.Close)
	client := aposclient.New(srv.URL(), aposclient.WithAPIKey("test-key"))
	r := check.NewRunner(client,
		check.WithPace(0),
		check.WithOutput(out),
		check.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return r, srv
}

func TestRunReportsPassAndFail(t *testing.T) {
	var out bytes.Buffer
	r, _ := newRunner(t, &out)

	ran := []string{}
	suite := check.Suite{
		Name: "demo",
		Checks: []check.Check{
			{Name: "first", Run: func(ctx context.Context, t *check.T) error {
				ran = append(ran, "first")
				return nil
			}},
			{Name: "second", Run: func(ctx context.Context, t *check.T) error {
				ran = append(ran, "second")
				return errors.New("boom")
			}},
			{Name: "third", Run: func(ctx context.Context, t *check.T) error {
				ran = append(ran, "third")
				return nil
			}},
		},
	}

	report, err := r.Run(context.Background(), suite)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "third"}, ran, "a failing check never aborts the suite")
	assert.Equal(t, 2, report.Passed())
	assert.Equal(t, 1, report.Failed())
	assert.False(t, report.Ok())

	console := out.String()
	assert.Contains(t, console, "✓ first")
	assert.Contains(t, console, "✗ second: boom")
	assert.Contains(t, console, "2 passed, 1 failed")
}

func TestRunTeardownRetiresInReverseOrder(t *testing.T) {
	var out bytes.Buffer
	r, srv := newRunner(t, &out)

	olderID := srv.Seed(lifecycle.KindFile, "older", false)
	newerID := srv.Seed(lifecycle.KindFile, "newer", false)

	suite := check.Suite{
		Name: "cleanup-order",
		Checks: []check.Check{
			{Name: "own two refs", Run: func(ctx context.Context, t *check.T) error {
				t.Own(lifecycle.ContentRef{RawID: olderID, Kind: lifecycle.KindFile})
				t.Own(lifecycle.ContentRef{RawID: newerID, Kind: lifecycle.KindFile})
				return nil
			}},
		},
	}

	report, err := r.Run(context.Background(), suite)
	require.NoError(t, err)
	assert.True(t, report.Ok())
	assert.False(t, srv.Has(olderID))
	assert.False(t, srv.Has(newerID))

	calls := srv.DeleteCalls()
	require.NotEmpty(t, calls)
	assert.True(t, strings.HasPrefix(newerID, bare(calls[0])),
		"newest ref must be retired first, got %v", calls)
}

func TestRunRecordsLeftovers(t *testing.T) {
	var out bytes.Buffer
	r, _ := newRunner(t, &out)

	suite := check.Suite{
		Name: "leftover",
		Checks: []check.Check{
			{Name: "own unretirable ref", Run: func(ctx context.Context, t *check.T) error {
				// A kind the API does not serve: every candidate fails,
				// and the ref must surface for manual cleanup.
				t.Own(lifecycle.ContentRef{RawID: "ghost1", Kind: lifecycle.Kind("ghost")})
				return nil
			}},
		},
	}

	report, err := r.Run(context.Background(), suite)
	require.NoError(t, err)
	require.Len(t, report.Leftovers, 1)
	assert.Equal(t, "ghost1", report.Leftovers[0].RawID)
	assert.False(t, report.Ok())
	assert.Equal(t, 1, report.Passed(), "cleanup trouble is not a check failure")
}

func TestRunHonorsCancelledContext(t *testing.T) {
	var out bytes.Buffer
	r, _ := newRunner(t, &out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, check.Suite{Name: "never", Checks: []check.Check{
		{Name: "unreached", Run: func(ctx context.Context, t *check.T) error { return nil }},
	}})
	assert.ErrorIs(t, err, context.Canceled)
}

func bare(id string) string {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		return id[:i]
	}
	return id
}
