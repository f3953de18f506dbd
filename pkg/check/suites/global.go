package suites

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tendant/cms-check/pkg/aposclient"
	"github.com/tendant/cms-check/pkg/check"
)

// Global walks the site-wide singleton: read, patch a marker field, restore
// the original value. The global doc is never retired; it must survive the
// run untouched.
func Global() check.Suite {
	var (
		doc       *aposclient.Doc
		origTitle string
	)
	marker := "check-" + uuid.NewString()[:8]

	return check.Suite{
		Name: "global",
		Checks: []check.Check{
			{
				Name: "read global doc",
				Run: func(ctx context.Context, t *check.T) error {
					g, err := t.Client.GetGlobal(ctx)
					if err != nil {
						return err
					}
					if g.ID == "" {
						return fmt.Errorf("global doc has no id")
					}
					doc = g
					origTitle = g.Title
					return nil
				},
			},
			{
				Name: "patch global doc",
				Run: func(ctx context.Context, t *check.T) error {
					if doc == nil {
						return fmt.Errorf("global doc unknown")
					}
					patched, err := t.Client.PatchGlobal(ctx, doc.ID, map[string]interface{}{
						"title": marker,
					})
					if err != nil {
						return err
					}
					if patched.Title != marker {
						return fmt.Errorf("patch did not stick, title is %q", patched.Title)
					}
					return nil
				},
			},
			{
				Name: "restore original value",
				Run: func(ctx context.Context, t *check.T) error {
					if doc == nil {
						return fmt.Errorf("global doc unknown")
					}
					restored, err := t.Client.PatchGlobal(ctx, doc.ID, map[string]interface{}{
						"title": origTitle,
					})
					if err != nil {
						return err
					}
					if restored.Title != origTitle {
						return fmt.Errorf("restore failed, title is %q", restored.Title)
					}
					return nil
				},
			},
		},
	}
}
