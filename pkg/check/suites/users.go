// Package suites holds the per-surface API walks: users, media, pages, the
// global doc, and authentication. Each suite creates what it needs, verifies
// the API's responses step by step, and registers everything it created for
// retirement at teardown.
package suites

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tendant/cms-check/pkg/aposclient"
	"github.com/tendant/cms-check/pkg/check"
	"github.com/tendant/cms-check/pkg/lifecycle"
)

// Users walks create/read/update/delete on the users surface.
func Users() check.Suite {
	var created *aposclient.Doc
	username := "check-" + uuid.NewString()[:8]

	return check.Suite{
		Name: "users",
		Checks: []check.Check{
			{
				Name: "create user",
				Run: func(ctx context.Context, t *check.T) error {
					doc, err := t.Client.CreatePiece(ctx, lifecycle.KindUser, map[string]interface{}{
						"title":    "Check User " + username,
						"username": username,
						"email":    username + "@example.com",
					})
					if err != nil {
						return err
					}
					if doc.ID == "" {
						return fmt.Errorf("created user has no id")
					}
					created = doc
					t.Own(lifecycle.ContentRef{RawID: doc.ID, DocID: doc.DocID, Kind: lifecycle.KindUser})
					return nil
				},
			},
			{
				Name: "read user back",
				Run: func(ctx context.Context, t *check.T) error {
					if created == nil {
						return fmt.Errorf("no user to read")
					}
					got, err := t.Client.GetPiece(ctx, lifecycle.KindUser, created.ID)
					if err != nil {
						return err
					}
					if got.DocID != created.DocID {
						return fmt.Errorf("read returned doc %q, created %q", got.DocID, created.DocID)
					}
					return nil
				},
			},
			{
				Name: "update user title",
				Run: func(ctx context.Context, t *check.T) error {
					if created == nil {
						return fmt.Errorf("no user to update")
					}
					got, err := t.Client.UpdatePiece(ctx, lifecycle.KindUser, created.ID, map[string]interface{}{
						"title": "Renamed " + username,
					})
					if err != nil {
						return err
					}
					if got.Title != "Renamed "+username {
						return fmt.Errorf("title not updated, got %q", got.Title)
					}
					return nil
				},
			},
			{
				Name: "retire user",
				Run: func(ctx context.Context, t *check.T) error {
					if created == nil {
						return fmt.Errorf("no user to retire")
					}
					res, err := t.Client.Retire(ctx, lifecycle.ContentRef{
						RawID: created.ID, DocID: created.DocID, Kind: lifecycle.KindUser,
					})
					if err != nil {
						return err
					}
					if !res.Retired() {
						return fmt.Errorf("user not retired: %v", res.Reasons())
					}
					if _, err := t.Client.GetPiece(ctx, lifecycle.KindUser, created.ID); !aposclient.IsNotFound(err) {
						return fmt.Errorf("user still readable after retirement")
					}
					return nil
				},
			},
		},
	}
}
