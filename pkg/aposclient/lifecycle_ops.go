package aposclient

import (
	"context"
	"fmt"

	"github.com/tendant/cms-check/pkg/lifecycle"
)

// publishable kinds get an unpublish pre-step; users and tags have no
// published variant, so their retirement is a bare delete.
var publishable = map[lifecycle.Kind]bool{
	lifecycle.KindImage:  true,
	lifecycle.KindFile:   true,
	lifecycle.KindPage:   true,
	lifecycle.KindGlobal: true,
}

// LifecycleOps adapts the client's endpoints for one kind into the operation
// pair the lifecycle resolver consumes. A 404 from the API surfaces as
// lifecycle.ErrNotFound so the resolver can classify confirmed absence.
func (c *Client) LifecycleOps(kind lifecycle.Kind) lifecycle.Operations {
	ops := lifecycle.Operations{
		Delete: func(ctx context.Context, id string) error {
			return mapNotFound(c.DeletePiece(ctx, kind, id))
		},
	}
	if publishable[kind] {
		ops.Unpublish = func(ctx context.Context, id string) error {
			return mapNotFound(c.UnpublishPiece(ctx, kind, id))
		}
	}
	return ops
}

// Retire locates and removes the document behind ref using the resolver.
func (c *Client) Retire(ctx context.Context, ref lifecycle.ContentRef) (lifecycle.Result, error) {
	r := lifecycle.New(lifecycle.WithLogger(c.log))
	return r.Retire(ctx, ref, c.LifecycleOps(ref.Kind))
}

func mapNotFound(err error) error {
	if IsNotFound(err) {
		return fmt.Errorf("%v: %w", err, lifecycle.ErrNotFound)
	}
	return err
}
