// Package check runs sequenced API walks against a CMS and reports pass/fail
// per step. Each suite owns the content it creates: refs registered during a
// check are retired in reverse-creation order when the suite finishes, so a
// failing run leaves no stray documents behind.
package check

import (
	"context"
	"log/slog"

	"github.com/tendant/cms-check/pkg/aposclient"
	"github.com/tendant/cms-check/pkg/lifecycle"
)

// Check is one verifiable step within a suite.
type Check struct {
	Name string
	Run  func(ctx context.Context, t *T) error
}

// Suite is an ordered sequence of checks against one API surface.
type Suite struct {
	Name   string
	Checks []Check
}

// T carries per-suite state into each check: the API client and the ownership
// list of content to retire at teardown. It is not safe for concurrent use;
// the runner executes checks sequentially.
type T struct {
	Client *aposclient.Client

	log   *slog.Logger
	owned []lifecycle.ContentRef
}

// Own registers content created by a check for retirement at suite teardown.
// Refs are retired in reverse-creation order so dependents go before their
// dependencies.
func (t *T) Own(ref lifecycle.ContentRef) {
	t.owned = append(t.owned, ref)
}

// Log exposes the runner's logger to checks.
func (t *T) Log() *slog.Logger {
	return t.log
}

// teardown retires owned content newest-first. A failed retirement never
// stops the sweep; every exhausted ref is reported so a human can clean up.
func (t *T) teardown(ctx context.Context) []lifecycle.ContentRef {
	var leftovers []lifecycle.ContentRef
	for i := len(t.owned) - 1; i >= 0; i-- {
		ref := t.owned[i]
		res, err := t.Client.Retire(ctx, ref)
		if err != nil {
			t.log.Error("retire rejected ref", "kind", ref.Kind, "id", ref.RawID, "error", err)
			leftovers = append(leftovers, ref)
			continue
		}
		if !res.Retired() {
			t.log.Error("cleanup needs manual intervention",
				"kind", ref.Kind, "id", ref.RawID, "reasons", res.Reasons())
			leftovers = append(leftovers, ref)
		}
	}
	return leftovers
}
