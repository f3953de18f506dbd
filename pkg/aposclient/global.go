package aposclient

import "context"

const globalPath = apiPrefix + "/@apostrophecms/global"

// GetGlobal returns the site-wide singleton document.
func (c *Client) GetGlobal(ctx context.Context) (*Doc, error) {
	var out Doc
	resp, err := c.request(ctx).SetResult(&out).Get(globalPath)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatchGlobal applies a partial update to the global document.
func (c *Client) PatchGlobal(ctx context.Context, id string, fields map[string]interface{}) (*Doc, error) {
	var out Doc
	resp, err := c.request(ctx).SetBody(fields).SetResult(&out).Patch(globalPath + "/" + id)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}
