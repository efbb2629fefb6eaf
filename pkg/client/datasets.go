package client

import (
	"context"
	"net/url"
	"time"
)

// Dataset is a collection of events sharing a schema.
type Dataset struct {
	Name            string     `json:"name"`
	Slug            string     `json:"slug,omitempty"`
	Description     string     `json:"description,omitempty"`
	ExpandJSONDepth int        `json:"expand_json_depth,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	LastWrittenAt   *time.Time `json:"last_written_at,omitempty"`
}

// ListDatasets returns all datasets visible to the API key.
func (c *Client) ListDatasets(ctx context.Context) ([]Dataset, error) {
	var out []Dataset
	if err := c.get(ctx, "/1/datasets", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDataset returns one dataset by slug.
func (c *Client) GetDataset(ctx context.Context, slug string) (*Dataset, error) {
	var out Dataset
	if err := c.get(ctx, "/1/datasets/"+url.PathEscape(slug), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDataset creates a dataset.
func (c *Client) CreateDataset(ctx context.Context, ds *Dataset) (*Dataset, error) {
	var out Dataset
	if err := c.post(ctx, "/1/datasets", ds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDataset deletes a dataset and all of its events.
func (c *Client) DeleteDataset(ctx context.Context, slug string) error {
	return c.delete(ctx, "/1/datasets/"+url.PathEscape(slug))
}
