package client

import (
	"context"
	"net/url"
)

// Marker annotates a point or span of time on a dataset, typically a deploy.
type Marker struct {
	ID        string `json:"id,omitempty"`
	Message   string `json:"message,omitempty"`
	Type      string `json:"type,omitempty"`
	URL       string `json:"url,omitempty"`
	StartTime int64  `json:"start_time,omitempty"` // unix seconds
	EndTime   int64  `json:"end_time,omitempty"`
}

// ListMarkers returns the dataset's markers.
func (c *Client) ListMarkers(ctx context.Context, dataset string) ([]Marker, error) {
	var out []Marker
	if err := c.get(ctx, "/1/markers/"+url.PathEscape(dataset), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMarker creates a marker.
func (c *Client) CreateMarker(ctx context.Context, dataset string, m *Marker) (*Marker, error) {
	var out Marker
	if err := c.post(ctx, "/1/markers/"+url.PathEscape(dataset), m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMarker deletes a marker.
func (c *Client) DeleteMarker(ctx context.Context, dataset, id string) error {
	return c.delete(ctx, "/1/markers/"+url.PathEscape(dataset)+"/"+url.PathEscape(id))
}
