package aposclient

import (
	"context"
)

const pagePath = apiPrefix + "/@apostrophecms/page"

// InsertPage creates a page relative to a target in the tree. Position is one
// of "firstChild", "lastChild", "before", "after".
func (c *Client) InsertPage(ctx context.Context, targetID, position string, fields map[string]interface{}) (*Page, error) {
	body := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		body[k] = v
	}
	body["_targetId"] = targetID
	body["_position"] = position

	var out Page
	resp, err := c.request(ctx).SetBody(body).SetResult(&out).Post(pagePath)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	c.log.Debug("inserted page", "id", out.ID, "target", targetID, "position", position)
	return &out, nil
}

// GetPage fetches one page by identifier. "_home" addresses the tree root.
func (c *Client) GetPage(ctx context.Context, id string) (*Page, error) {
	var out Page
	resp, err := c.request(ctx).SetResult(&out).Get(pagePath + "/" + id)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// MovePage re-parents or re-orders a page relative to a target.
func (c *Client) MovePage(ctx context.Context, id, targetID, position string) (*Page, error) {
	var out Page
	resp, err := c.request(ctx).
		SetBody(map[string]string{"_targetId": targetID, "_position": position}).
		SetResult(&out).
		Patch(pagePath + "/" + id)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}
