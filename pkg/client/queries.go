package client

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/beaconhq/beacon-go/pkg/query"
	"github.com/beaconhq/beacon-go/pkg/results"
)

// ErrQueryTimeout is returned when a query execution does not complete
// within the client's polling deadline.
var ErrQueryTimeout = errors.New("client: query result polling deadline exceeded")

// QueryHandle identifies a saved query.
type QueryHandle struct {
	ID string `json:"id"`
}

// QueryResult is one execution's materialized result.
type QueryResult struct {
	ID       string
	Complete bool
	Rows     []query.Row
}

type createQueryResultRequest struct {
	QueryID       string `json:"query_id"`
	DisableSeries bool   `json:"disable_series"`
	Limit         int    `json:"limit,omitempty"`
}

// queryResultResponse is the wire shape of a query execution. Series data is
// carried for time-series rendering and deliberately not decoded here.
type queryResultResponse struct {
	ID       string `json:"id"`
	Complete bool   `json:"complete"`
	Data     struct {
		Results []struct {
			Data query.Row `json:"data"`
		} `json:"results"`
	} `json:"data"`
}

func (r *queryResultResponse) toResult() *QueryResult {
	res := &QueryResult{ID: r.ID, Complete: r.Complete}
	for _, row := range r.Data.Results {
		res.Rows = append(res.Rows, row.Data)
	}
	return res
}

// RunQuery saves the spec against a dataset, starts an execution with series
// data disabled, and polls until the upstream marks it complete. One
// execution returns at most 10,000 rows regardless of the spec's limit.
func (c *Client) RunQuery(ctx context.Context, dataset string, spec *query.Spec) (*QueryHandle, *QueryResult, error) {
	ds := url.PathEscape(dataset)

	var handle QueryHandle
	if err := c.post(ctx, "/1/queries/"+ds, spec, &handle); err != nil {
		return nil, nil, err
	}

	var resp queryResultResponse
	req := createQueryResultRequest{QueryID: handle.ID, DisableSeries: true, Limit: spec.Limit}
	if err := c.post(ctx, "/1/query_results/"+ds, req, &resp); err != nil {
		return nil, nil, err
	}

	deadline := time.Now().Add(c.pollTimeout)
	for !resp.Complete {
		if time.Now().After(deadline) {
			return nil, nil, ErrQueryTimeout
		}
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		if err := c.get(ctx, "/1/query_results/"+ds+"/"+url.PathEscape(resp.ID), &resp); err != nil {
			return nil, nil, err
		}
	}

	c.logger.Debug("query execution complete",
		"dataset", dataset,
		"query_id", handle.ID,
		"result_id", resp.ID,
		"rows", len(resp.Data.Results),
	)

	return &handle, resp.toResult(), nil
}

// datasetRunner binds RunQuery to one dataset as a results.Runner.
type datasetRunner struct {
	c       *Client
	dataset string
}

func (r datasetRunner) Run(ctx context.Context, spec *query.Spec) ([]query.Row, error) {
	_, res, err := r.c.RunQuery(ctx, r.dataset, spec)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// QueryRunner returns a results.Runner executing queries against one dataset.
func (c *Client) QueryRunner(dataset string) results.Runner {
	return datasetRunner{c: c, dataset: dataset}
}
