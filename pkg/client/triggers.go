package client

import (
	"context"
	"net/url"

	"github.com/beaconhq/beacon-go/pkg/query"
)

// Threshold is the condition a trigger's query result is evaluated against.
type Threshold struct {
	Op    query.FilterOp `json:"op"`
	Value float64        `json:"value"`
}

// Recipient receives trigger notifications.
type Recipient struct {
	ID     string `json:"id,omitempty"`
	Type   string `json:"type"` // email, slack, webhook, pagerduty
	Target string `json:"target,omitempty"`
}

// Trigger evaluates a query on a schedule and notifies when the threshold is
// crossed.
type Trigger struct {
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Query       *query.Spec `json:"query"`
	Threshold   Threshold   `json:"threshold"`
	Frequency   int         `json:"frequency,omitempty"` // seconds between evaluations
	Recipients  []Recipient `json:"recipients,omitempty"`
	Disabled    bool        `json:"disabled,omitempty"`
	Triggered   bool        `json:"triggered,omitempty"`
}

// ListTriggers returns the dataset's triggers.
func (c *Client) ListTriggers(ctx context.Context, dataset string) ([]Trigger, error) {
	var out []Trigger
	if err := c.get(ctx, "/1/triggers/"+url.PathEscape(dataset), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTrigger returns one trigger.
func (c *Client) GetTrigger(ctx context.Context, dataset, id string) (*Trigger, error) {
	var out Trigger
	if err := c.get(ctx, "/1/triggers/"+url.PathEscape(dataset)+"/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTrigger creates a trigger.
func (c *Client) CreateTrigger(ctx context.Context, dataset string, t *Trigger) (*Trigger, error) {
	var out Trigger
	if err := c.post(ctx, "/1/triggers/"+url.PathEscape(dataset), t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTrigger replaces a trigger's definition.
func (c *Client) UpdateTrigger(ctx context.Context, dataset string, t *Trigger) (*Trigger, error) {
	var out Trigger
	if err := c.put(ctx, "/1/triggers/"+url.PathEscape(dataset)+"/"+url.PathEscape(t.ID), t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTrigger deletes a trigger.
func (c *Client) DeleteTrigger(ctx context.Context, dataset, id string) error {
	return c.delete(ctx, "/1/triggers/"+url.PathEscape(dataset)+"/"+url.PathEscape(id))
}
