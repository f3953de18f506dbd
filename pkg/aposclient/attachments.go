package aposclient

import (
	"context"
	"io"
)

// renditionOrder ranks generated image renditions from largest to smallest.
// Selection is cosmetic: checks want a usable URL, preferring the richest
// rendition actually present.
var renditionOrder = []string{"max", "full", "two-thirds", "one-half", "one-third", "one-sixth"}

// UploadAttachment streams a local asset to the attachment endpoint and
// returns the stored attachment with its rendition URLs.
func (c *Client) UploadAttachment(ctx context.Context, filename string, r io.Reader) (*Attachment, error) {
	var out Attachment
	resp, err := c.request(ctx).
		SetFileReader("file", filename, r).
		SetResult(&out).
		Post(apiPrefix + "/@apostrophecms/attachment/upload")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	c.log.Debug("uploaded attachment", "name", out.Name, "id", out.ID)
	return &out, nil
}

// PreferredRendition returns the URL of the best rendition present on the
// attachment, and false when it carries none.
func PreferredRendition(att *Attachment) (string, bool) {
	if att == nil || len(att.URLs) == 0 {
		return "", false
	}
	for _, size := range renditionOrder {
		if url, ok := att.URLs[size]; ok && url != "" {
			return url, true
		}
	}
	// Unrecognized sizes only: any present URL beats none. Map order is
	// unspecified, so pick deterministically by the smallest key.
	var bestKey string
	for k, url := range att.URLs {
		if url == "" {
			continue
		}
		if bestKey == "" || k < bestKey {
			bestKey = k
		}
	}
	if bestKey == "" {
		return "", false
	}
	return att.URLs[bestKey], true
}
