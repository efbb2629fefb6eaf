package client

import (
	"context"
	"net/url"
	"time"
)

// Column describes one field of a dataset's schema.
type Column struct {
	ID          string     `json:"id,omitempty"`
	KeyName     string     `json:"key_name"`
	Type        string     `json:"type,omitempty"`
	Description string     `json:"description,omitempty"`
	Hidden      bool       `json:"hidden,omitempty"`
	LastWritten *time.Time `json:"last_written,omitempty"`
}

// ListColumns returns the columns of a dataset.
func (c *Client) ListColumns(ctx context.Context, dataset string) ([]Column, error) {
	var out []Column
	if err := c.get(ctx, "/1/columns/"+url.PathEscape(dataset), &out); err != nil {
		return nil, err
	}
	return out, nil
}
