package suites

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tendant/cms-check/pkg/aposclient"
	"github.com/tendant/cms-check/pkg/check"
	"github.com/tendant/cms-check/pkg/lifecycle"
)

// tinyJPEG stands in for a real asset; the attachment endpoint only needs
// bytes with a filename.
var tinyJPEG = strings.Repeat("\xff\xd8\xff", 16)

// Media walks attachment upload, image and tag creation, publication, and
// retirement of a published document.
func Media() check.Suite {
	var (
		att   *aposclient.Attachment
		image *aposclient.Doc
	)
	marker := uuid.NewString()[:8]

	return check.Suite{
		Name: "media",
		Checks: []check.Check{
			{
				Name: "upload attachment",
				Run: func(ctx context.Context, t *check.T) error {
					a, err := t.Client.UploadAttachment(ctx, "check-"+marker+".jpg", strings.NewReader(tinyJPEG))
					if err != nil {
						return err
					}
					if a.ID == "" {
						return fmt.Errorf("attachment has no id")
					}
					att = a
					return nil
				},
			},
			{
				Name: "preferred rendition resolves",
				Run: func(ctx context.Context, t *check.T) error {
					if att == nil {
						return fmt.Errorf("no attachment uploaded")
					}
					url, ok := aposclient.PreferredRendition(att)
					if !ok {
						return fmt.Errorf("attachment %s has no usable rendition", att.ID)
					}
					t.Log().Debug("rendition picked", "url", url)
					return nil
				},
			},
			{
				Name: "create image from attachment",
				Run: func(ctx context.Context, t *check.T) error {
					if att == nil {
						return fmt.Errorf("no attachment uploaded")
					}
					doc, err := t.Client.CreatePiece(ctx, lifecycle.KindImage, map[string]interface{}{
						"title":      "Check Image " + marker,
						"attachment": map[string]interface{}{"_id": att.ID},
					})
					if err != nil {
						return err
					}
					image = doc
					t.Own(lifecycle.ContentRef{RawID: doc.ID, DocID: doc.DocID, Kind: lifecycle.KindImage})
					return nil
				},
			},
			{
				Name: "create image tag",
				Run: func(ctx context.Context, t *check.T) error {
					doc, err := t.Client.CreatePiece(ctx, lifecycle.KindImageTag, map[string]interface{}{
						"title": "check-tag-" + marker,
					})
					if err != nil {
						return err
					}
					t.Own(lifecycle.ContentRef{RawID: doc.ID, DocID: doc.DocID, Kind: lifecycle.KindImageTag})
					return nil
				},
			},
			{
				Name: "publish image",
				Run: func(ctx context.Context, t *check.T) error {
					if image == nil {
						return fmt.Errorf("no image to publish")
					}
					return t.Client.PublishPiece(ctx, lifecycle.KindImage, image.ID)
				},
			},
			{
				Name: "retire published image",
				Run: func(ctx context.Context, t *check.T) error {
					if image == nil {
						return fmt.Errorf("no image to retire")
					}
					// Deliberately retire through the published identifier
					// form; the resolver has to find the deletable variant.
					publishedID := image.DocID + ":en:" + lifecycle.ModePublished
					res, err := t.Client.Retire(ctx, lifecycle.ContentRef{
						RawID: publishedID, Kind: lifecycle.KindImage,
					})
					if err != nil {
						return err
					}
					if !res.Retired() {
						return fmt.Errorf("image not retired: %v", res.Reasons())
					}
					return nil
				},
			},
		},
	}
}
