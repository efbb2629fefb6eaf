package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/beaconhq/beacon-go/pkg/client"
	"github.com/beaconhq/beacon-go/pkg/query"
	"github.com/beaconhq/beacon-go/pkg/results"
)

const runQuerySchema = `{
  "type": "object",
  "properties": {
    "dataset": {"type": "string", "description": "Dataset slug to query."},
    "calculations": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "properties": {
          "op": {"type": "string"},
          "column": {"type": "string"},
          "alias": {"type": "string"}
        },
        "required": ["op"]
      }
    },
    "breakdowns": {"type": "array", "items": {"type": "string"}},
    "time_range_seconds": {"type": "integer", "minimum": 1},
    "sort_key": {"type": "string"},
    "sort_order": {"type": "string", "enum": ["ascending", "descending"]},
    "max_results": {"type": "integer", "minimum": 1}
  },
  "required": ["dataset", "calculations"]
}`

const datasetOnlySchema = `{
  "type": "object",
  "properties": {
    "dataset": {"type": "string"}
  },
  "required": ["dataset"]
}`

const emptySchema = `{"type": "object"}`

const createMarkerSchema = `{
  "type": "object",
  "properties": {
    "dataset": {"type": "string"},
    "message": {"type": "string"},
    "type": {"type": "string"},
    "url": {"type": "string"}
  },
  "required": ["dataset", "message"]
}`

type runQueryArgs struct {
	Dataset          string              `json:"dataset"`
	Calculations     []query.Calculation `json:"calculations"`
	Breakdowns       []string            `json:"breakdowns"`
	TimeRangeSeconds int64               `json:"time_range_seconds"`
	SortKey          string              `json:"sort_key"`
	SortOrder        string              `json:"sort_order"`
	MaxResults       int                 `json:"max_results"`
}

type datasetOnlyArgs struct {
	Dataset string `json:"dataset"`
}

type createMarkerArgs struct {
	Dataset string `json:"dataset"`
	Message string `json:"message"`
	Type    string `json:"type"`
	URL     string `json:"url"`
}

// DefaultTools returns a registry exposing the SDK's core operations.
func DefaultTools(c *client.Client) (*Registry, error) {
	r := NewRegistry()

	register := func(name, desc, schema string, h Handler) error {
		return r.Register(name, desc, []byte(schema), h)
	}

	if err := register("run_query",
		"Run an analytics query against a dataset and return all result rows, paginating past the per-execution cap.",
		runQuerySchema,
		func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args runQueryArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("decode arguments: %w", err)
			}
			spec := &query.Spec{
				TimeRange:    time.Duration(args.TimeRangeSeconds) * time.Second,
				Calculations: args.Calculations,
				Breakdowns:   args.Breakdowns,
			}
			if err := spec.Validate(); err != nil {
				return nil, err
			}
			opts := []results.Option{}
			if args.SortKey != "" {
				opts = append(opts, results.WithSortKey(args.SortKey))
			}
			if args.SortOrder != "" {
				opts = append(opts, results.WithSortOrder(query.Direction(args.SortOrder)))
			}
			if args.MaxResults > 0 {
				opts = append(opts, results.WithMaxResults(args.MaxResults))
			}
			m := results.New(c.QueryRunner(args.Dataset))
			return m.Materialize(ctx, spec, opts...)
		}); err != nil {
		return nil, err
	}

	if err := register("list_datasets",
		"List all datasets visible to the current API key.",
		emptySchema,
		func(ctx context.Context, _ json.RawMessage) (any, error) {
			return c.ListDatasets(ctx)
		}); err != nil {
		return nil, err
	}

	if err := register("list_triggers",
		"List the triggers configured on a dataset.",
		datasetOnlySchema,
		func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args datasetOnlyArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("decode arguments: %w", err)
			}
			return c.ListTriggers(ctx, args.Dataset)
		}); err != nil {
		return nil, err
	}

	if err := register("create_marker",
		"Annotate a dataset with a marker, for example a deploy.",
		createMarkerSchema,
		func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args createMarkerArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("decode arguments: %w", err)
			}
			return c.CreateMarker(ctx, args.Dataset, &client.Marker{
				Message:   args.Message,
				Type:      args.Type,
				URL:       args.URL,
				StartTime: time.Now().Unix(),
			})
		}); err != nil {
		return nil, err
	}

	return r, nil
}
