package results

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/beaconhq/beacon-go/pkg/config"
	"github.com/beaconhq/beacon-go/pkg/query"
)

// Configuration errors. All three are fatal to the materialization call; no
// retry will change the outcome.
var (
	// ErrNoCalculations is returned for specs without at least one
	// calculation; there is nothing to sort on without one.
	ErrNoCalculations = errors.New("results: query spec has no calculations")

	// ErrExplicitOrder is returned when the caller's spec carries its own
	// orders. The engine owns sort order for the duration of pagination.
	ErrExplicitOrder = errors.New("results: query spec must not carry orders")

	// ErrMissingSortKey is returned when the resolved sort key is absent
	// from a returned row, most often because a caller-supplied grouping
	// field does not exist in the dataset.
	ErrMissingSortKey = errors.New("results: sort key missing from result row")
)

// Runner executes one query specification against the upstream engine,
// waiting out the engine's own execute-then-poll cycle, and returns the
// materialized rows. One execution returns at most the engine's page size.
type Runner interface {
	Run(ctx context.Context, spec *query.Spec) ([]query.Row, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, spec *query.Spec) ([]query.Row, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, spec *query.Spec) ([]query.Row, error) {
	return f(ctx, spec)
}

// Cache stores completed materializations keyed by a digest of the query.
// Only finished results are cached; partial pagination progress never is.
type Cache interface {
	Get(key uint64) ([]query.Row, bool, error)
	Set(key uint64, rows []query.Row) error
}

// Materializer retrieves result sets larger than the query API's
// per-execution row cap by re-executing a constrained clone of the query
// per page and deduplicating the at-least-once overlap between pages.
type Materializer struct {
	runner   Runner
	defaults []Option
}

// settings is the per-call view of all options.
type settings struct {
	sortKey       string
	dir           query.Direction
	maxResults    int
	pageSize      int
	dupThreshold  float64
	defaultWindow time.Duration
	onPage        func(page, rows int)
	logger        *slog.Logger
	cache         Cache
	now           func() time.Time
}

// Option adjusts one materialization. Options passed to New become defaults
// for every call; options passed to Materialize apply to that call only.
type Option func(*settings)

// WithSortKey names the pagination key: a calculation op name (matched
// case-insensitively), a calculation alias (matched exactly), or failing
// both, a breakdown column. Default is the spec's first calculation.
func WithSortKey(name string) Option {
	return func(s *settings) { s.sortKey = name }
}

// WithSortOrder sets the pagination direction. Default Descending.
func WithSortOrder(dir query.Direction) Option {
	return func(s *settings) { s.dir = dir }
}

// WithMaxResults caps the accumulated result. The output is truncated to the
// first n rows encountered, in upstream order. Default 100000.
func WithMaxResults(n int) Option {
	return func(s *settings) { s.maxResults = n }
}

// WithOnPage registers a progress callback invoked after every page with the
// page number and the cumulative deduplicated row count. Pure notification;
// it cannot influence the loop.
func WithOnPage(fn func(page, rows int)) Option {
	return func(s *settings) { s.onPage = fn }
}

// WithPageSize overrides the assumed per-execution row cap. Only useful
// against non-production endpoints; the hosted API pins this at 10000.
func WithPageSize(n int) Option {
	return func(s *settings) { s.pageSize = n }
}

// WithDuplicateThreshold overrides the duplicate-rate stop policy: once a
// page's share of already-seen rows exceeds the threshold, pagination stops.
func WithDuplicateThreshold(rate float64) Option {
	return func(s *settings) { s.dupThreshold = rate }
}

// WithDefaultWindow overrides the window applied to specs with no time bounds.
func WithDefaultWindow(d time.Duration) Option {
	return func(s *settings) { s.defaultWindow = d }
}

// WithLogger sets the logger. Default slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithCache attaches a cache for completed materializations.
func WithCache(c Cache) Option {
	return func(s *settings) { s.cache = c }
}

// withNow pins the clock, for tests exercising relative-window normalization.
func withNow(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// New returns a Materializer over the given runner. opts become defaults for
// every Materialize call.
func New(runner Runner, opts ...Option) *Materializer {
	return &Materializer{runner: runner, defaults: opts}
}

func (m *Materializer) settings(opts []Option) settings {
	s := settings{
		dir:           query.Descending,
		maxResults:    config.DefaultMaxResults,
		pageSize:      config.PageSize,
		dupThreshold:  config.DuplicateStopThreshold,
		defaultWindow: config.DefaultQueryWindow,
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range m.defaults {
		opt(&s)
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Materialize retrieves the spec's full result set, re-executing the query
// page by page until a stop condition holds:
//
//  1. a page came back empty;
//  2. the accumulated row count reached the max-results cap;
//  3. the page's duplicate rate exceeded the stop threshold, meaning the
//     engine is rescanning ties at the current boundary instead of advancing;
//  4. the page was short of the page size, so it was the last one.
//
// Otherwise the boundary advances to the sort key's value on the page's last
// row and the next page is fetched with an inclusive constraint past it.
//
// On any error the accumulated rows are discarded: a truncated-by-error
// result would be indistinguishable from a truncated-by-policy one.
func (m *Materializer) Materialize(ctx context.Context, spec *query.Spec, opts ...Option) ([]query.Row, error) {
	s := m.settings(opts)

	if spec == nil || len(spec.Calculations) == 0 {
		return nil, ErrNoCalculations
	}
	if len(spec.Orders) > 0 {
		return nil, ErrExplicitOrder
	}

	start, end := normalizeWindow(spec, s.now(), s.defaultWindow)
	target := resolveSortKey(spec.Calculations, s.sortKey)

	var key uint64
	if s.cache != nil {
		var err error
		if key, err = cacheKey(spec, start, end, target, s.dir, s.maxResults); err == nil {
			if rows, ok, err := s.cache.Get(key); err == nil && ok {
				s.logger.Debug("materialization served from cache", "rows", len(rows))
				return rows, nil
			}
		}
	}

	dedup := newDeduplicator(spec.Breakdowns, spec.Calculations)
	var boundary any
	haveBoundary := false

	for page := 1; ; page++ {
		ps := spec.Clone()
		ps.TimeRange = 0
		ps.StartTime, ps.EndTime = &start, &end
		ps.Limit = s.pageSize
		pinOrder(ps, target, s.dir)
		if haveBoundary {
			applyCursor(ps, target, s.dir, boundary)
		}

		rows, err := m.runner.Run(ctx, ps)
		if err != nil {
			return nil, err
		}

		added := dedup.absorb(rows)
		if s.onPage != nil {
			s.onPage(page, dedup.count())
		}
		s.logger.Debug("materialized page",
			"page", page,
			"returned", len(rows),
			"new", added,
			"accumulated", dedup.count(),
		)

		if len(rows) == 0 {
			break
		}
		if dedup.count() >= s.maxResults {
			dedup.truncate(s.maxResults)
			break
		}
		if rate := 1 - float64(added)/float64(len(rows)); rate > s.dupThreshold {
			break
		}
		if len(rows) < s.pageSize {
			break
		}

		b, ok := rows[len(rows)-1][target.Key()]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingSortKey, target.Key())
		}
		boundary, haveBoundary = b, true
	}

	out := dedup.rows
	if s.cache != nil && key != 0 {
		if err := s.cache.Set(key, out); err != nil {
			s.logger.Warn("failed to cache materialization", "err", err)
		}
	}
	return out, nil
}

// cacheKey digests everything that determines a materialization's output.
func cacheKey(spec *query.Spec, start, end time.Time, target SortTarget, dir query.Direction, maxResults int) (uint64, error) {
	data, err := spec.MarshalJSON()
	if err != nil {
		return 0, err
	}
	h := xxhash.New()
	h.Write(data)
	var ts [16]byte
	binary.BigEndian.PutUint64(ts[0:8], uint64(start.Unix()))
	binary.BigEndian.PutUint64(ts[8:16], uint64(end.Unix()))
	h.Write(ts[:])
	fmt.Fprintf(h, "%s\x1f%s\x1f%d", target.Key(), dir, maxResults)
	return h.Sum64(), nil
}
