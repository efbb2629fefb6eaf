package client

import (
	"context"
	"net/url"
)

// SLI names the derived column whose boolean value classifies events as good
// or bad for an SLO.
type SLI struct {
	Alias string `json:"alias"`
}

// SLO is a service level objective over a dataset.
type SLO struct {
	ID               string `json:"id,omitempty"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	SLI              SLI    `json:"sli"`
	TimePeriodDays   int    `json:"time_period_days"`
	TargetPerMillion int    `json:"target_per_million"`
}

// BurnAlert notifies when an SLO's error budget burns too fast.
type BurnAlert struct {
	ID                string      `json:"id,omitempty"`
	ExhaustionMinutes int         `json:"exhaustion_minutes"`
	Recipients        []Recipient `json:"recipients,omitempty"`
}

// ListSLOs returns the dataset's SLOs.
func (c *Client) ListSLOs(ctx context.Context, dataset string) ([]SLO, error) {
	var out []SLO
	if err := c.get(ctx, "/1/slos/"+url.PathEscape(dataset), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSLO returns one SLO.
func (c *Client) GetSLO(ctx context.Context, dataset, id string) (*SLO, error) {
	var out SLO
	if err := c.get(ctx, "/1/slos/"+url.PathEscape(dataset)+"/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSLO creates an SLO.
func (c *Client) CreateSLO(ctx context.Context, dataset string, s *SLO) (*SLO, error) {
	var out SLO
	if err := c.post(ctx, "/1/slos/"+url.PathEscape(dataset), s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSLO replaces an SLO's definition.
func (c *Client) UpdateSLO(ctx context.Context, dataset string, s *SLO) (*SLO, error) {
	var out SLO
	if err := c.put(ctx, "/1/slos/"+url.PathEscape(dataset)+"/"+url.PathEscape(s.ID), s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSLO deletes an SLO.
func (c *Client) DeleteSLO(ctx context.Context, dataset, id string) error {
	return c.delete(ctx, "/1/slos/"+url.PathEscape(dataset)+"/"+url.PathEscape(id))
}

// ListBurnAlerts returns the burn alerts attached to an SLO.
func (c *Client) ListBurnAlerts(ctx context.Context, dataset, sloID string) ([]BurnAlert, error) {
	var out []BurnAlert
	if err := c.get(ctx, "/1/burn_alerts/"+url.PathEscape(dataset)+"?slo_id="+url.QueryEscape(sloID), &out); err != nil {
		return nil, err
	}
	return out, nil
}
