package client

import (
	"context"
	"net/url"

	"github.com/beaconhq/beacon-go/pkg/query"
)

// BoardQuery is one saved query placed on a board.
type BoardQuery struct {
	Caption string      `json:"caption,omitempty"`
	Dataset string      `json:"dataset"`
	Query   *query.Spec `json:"query"`
}

// Board is a saved collection of queries.
type Board struct {
	ID          string       `json:"id,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Style       string       `json:"style,omitempty"` // list or visual
	Queries     []BoardQuery `json:"queries,omitempty"`
}

// ListBoards returns all boards.
func (c *Client) ListBoards(ctx context.Context) ([]Board, error) {
	var out []Board
	if err := c.get(ctx, "/1/boards", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBoard returns one board.
func (c *Client) GetBoard(ctx context.Context, id string) (*Board, error) {
	var out Board
	if err := c.get(ctx, "/1/boards/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBoard creates a board.
func (c *Client) CreateBoard(ctx context.Context, b *Board) (*Board, error) {
	var out Board
	if err := c.post(ctx, "/1/boards", b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBoard replaces a board's definition.
func (c *Client) UpdateBoard(ctx context.Context, b *Board) (*Board, error) {
	var out Board
	if err := c.put(ctx, "/1/boards/"+url.PathEscape(b.ID), b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBoard deletes a board.
func (c *Client) DeleteBoard(ctx context.Context, id string) error {
	return c.delete(ctx, "/1/boards/"+url.PathEscape(id))
}
