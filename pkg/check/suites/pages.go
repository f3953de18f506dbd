package suites

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tendant/cms-check/pkg/aposclient"
	"github.com/tendant/cms-check/pkg/check"
	"github.com/tendant/cms-check/pkg/lifecycle"
)

// Pages walks the page tree: insert under home, move, archive, retire.
func Pages() check.Suite {
	var (
		home *aposclient.Page
		page *aposclient.Page
	)
	marker := uuid.NewString()[:8]

	return check.Suite{
		Name: "pages",
		Checks: []check.Check{
			{
				Name: "read home page",
				Run: func(ctx context.Context, t *check.T) error {
					h, err := t.Client.GetPage(ctx, "_home")
					if err != nil {
						return err
					}
					if h.ID == "" {
						return fmt.Errorf("home page has no id")
					}
					home = h
					return nil
				},
			},
			{
				Name: "insert child page",
				Run: func(ctx context.Context, t *check.T) error {
					if home == nil {
						return fmt.Errorf("home page unknown")
					}
					p, err := t.Client.InsertPage(ctx, home.ID, "lastChild", map[string]interface{}{
						"title": "Check Page " + marker,
						"slug":  "/check-" + marker,
					})
					if err != nil {
						return err
					}
					page = p
					t.Own(lifecycle.ContentRef{RawID: p.ID, DocID: p.DocID, Kind: lifecycle.KindPage})
					return nil
				},
			},
			{
				Name: "move page to first child",
				Run: func(ctx context.Context, t *check.T) error {
					if page == nil || home == nil {
						return fmt.Errorf("nothing to move")
					}
					moved, err := t.Client.MovePage(ctx, page.ID, home.ID, "firstChild")
					if err != nil {
						return err
					}
					if moved.DocID != page.DocID {
						return fmt.Errorf("move returned a different doc: %q", moved.DocID)
					}
					return nil
				},
			},
			{
				Name: "archive page",
				Run: func(ctx context.Context, t *check.T) error {
					if page == nil {
						return fmt.Errorf("nothing to archive")
					}
					archived, err := t.Client.ArchivePiece(ctx, lifecycle.KindPage, page.ID)
					if err != nil {
						return err
					}
					if !archived.Archived {
						return fmt.Errorf("page not marked archived")
					}
					return nil
				},
			},
			{
				Name: "retire archived page",
				Run: func(ctx context.Context, t *check.T) error {
					if page == nil {
						return fmt.Errorf("nothing to retire")
					}
					res, err := t.Client.Retire(ctx, lifecycle.ContentRef{
						RawID: page.ID, DocID: page.DocID, Kind: lifecycle.KindPage,
					})
					if err != nil {
						return err
					}
					if !res.Retired() {
						return fmt.Errorf("page not retired: %v", res.Reasons())
					}
					return nil
				},
			},
		},
	}
}
