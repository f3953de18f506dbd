package aposclient

import (
	"context"
	"fmt"

	"github.com/tendant/cms-check/pkg/lifecycle"
)

// modulePaths maps each content kind to its API module path.
var modulePaths = map[lifecycle.Kind]string{
	lifecycle.KindImage:    "@apostrophecms/image",
	lifecycle.KindFile:     "@apostrophecms/file",
	lifecycle.KindImageTag: "@apostrophecms/image-tag",
	lifecycle.KindFileTag:  "@apostrophecms/file-tag",
	lifecycle.KindPage:     "@apostrophecms/page",
	lifecycle.KindUser:     "@apostrophecms/user",
	lifecycle.KindGlobal:   "@apostrophecms/global",
}

func modulePath(kind lifecycle.Kind) (string, error) {
	p, ok := modulePaths[kind]
	if !ok {
		return "", fmt.Errorf("unknown content kind %q", kind)
	}
	return apiPrefix + "/" + p, nil
}

// CreatePiece inserts a new piece document of the given kind.
func (c *Client) CreatePiece(ctx context.Context, kind lifecycle.Kind, fields map[string]interface{}) (*Doc, error) {
	base, err := modulePath(kind)
	if err != nil {
		return nil, err
	}
	var out Doc
	resp, err := c.request(ctx).SetBody(fields).SetResult(&out).Post(base)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	c.log.Debug("created piece", "kind", kind, "id", out.ID)
	return &out, nil
}

// GetPiece fetches one document by any identifier form the API accepts.
func (c *Client) GetPiece(ctx context.Context, kind lifecycle.Kind, id string) (*Doc, error) {
	base, err := modulePath(kind)
	if err != nil {
		return nil, err
	}
	var out Doc
	resp, err := c.request(ctx).SetResult(&out).Get(base + "/" + id)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPieces returns one page of documents for the kind.
func (c *Client) ListPieces(ctx context.Context, kind lifecycle.Kind) (*DocList, error) {
	base, err := modulePath(kind)
	if err != nil {
		return nil, err
	}
	var out DocList
	resp, err := c.request(ctx).SetResult(&out).Get(base)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePiece applies a partial update to the document.
func (c *Client) UpdatePiece(ctx context.Context, kind lifecycle.Kind, id string, fields map[string]interface{}) (*Doc, error) {
	base, err := modulePath(kind)
	if err != nil {
		return nil, err
	}
	var out Doc
	resp, err := c.request(ctx).SetBody(fields).SetResult(&out).Patch(base + "/" + id)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePiece permanently removes the document.
func (c *Client) DeletePiece(ctx context.Context, kind lifecycle.Kind, id string) error {
	base, err := modulePath(kind)
	if err != nil {
		return err
	}
	resp, err := c.request(ctx).Delete(base + "/" + id)
	return check(resp, err)
}

// PublishPiece promotes the draft variant to published.
func (c *Client) PublishPiece(ctx context.Context, kind lifecycle.Kind, id string) error {
	base, err := modulePath(kind)
	if err != nil {
		return err
	}
	resp, err := c.request(ctx).Post(base + "/" + id + "/publish")
	return check(resp, err)
}

// UnpublishPiece withdraws the published variant, leaving the draft.
func (c *Client) UnpublishPiece(ctx context.Context, kind lifecycle.Kind, id string) error {
	base, err := modulePath(kind)
	if err != nil {
		return err
	}
	resp, err := c.request(ctx).Post(base + "/" + id + "/unpublish")
	return check(resp, err)
}

// ArchivePiece moves the document to the archive without deleting it.
func (c *Client) ArchivePiece(ctx context.Context, kind lifecycle.Kind, id string) (*Doc, error) {
	return c.UpdatePiece(ctx, kind, id, map[string]interface{}{"archived": true})
}

// RestorePiece brings an archived document back.
func (c *Client) RestorePiece(ctx context.Context, kind lifecycle.Kind, id string) (*Doc, error) {
	return c.UpdatePiece(ctx, kind, id, map[string]interface{}{"archived": false})
}
