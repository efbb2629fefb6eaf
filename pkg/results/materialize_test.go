package results

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/beaconhq/beacon-go/pkg/query"
)

// scriptedRunner returns one canned page per call, in order, then empty
// pages. It records every spec it was handed.
type scriptedRunner struct {
	pages [][]query.Row
	specs []*query.Spec
	err   error
	errOn int // 1-based call index that fails; 0 = never
}

func (r *scriptedRunner) Run(_ context.Context, spec *query.Spec) ([]query.Row, error) {
	r.specs = append(r.specs, spec)
	call := len(r.specs)
	if r.errOn != 0 && call == r.errOn {
		return nil, r.err
	}
	if call <= len(r.pages) {
		return r.pages[call-1], nil
	}
	return nil, nil
}

// genRows produces rows with strictly descending COUNT values starting at
// startVal, each with a unique endpoint.
func genRows(prefix string, n int, startVal float64) []query.Row {
	rows := make([]query.Row, n)
	for i := range rows {
		rows[i] = query.Row{
			"endpoint": fmt.Sprintf("%s-%06d", prefix, i),
			"COUNT":    startVal - float64(i),
		}
	}
	return rows
}

func countSpec() *query.Spec {
	return &query.Spec{
		TimeRange:    2 * time.Hour,
		Calculations: []query.Calculation{{Op: query.OpCount}},
		Breakdowns:   []string{"endpoint"},
	}
}

var testNow = time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func TestMaterializeCalculationPagination(t *testing.T) {
	// Two synthetic pages of 10,000 and 3,000 rows, zero identity overlap.
	page1 := genRows("a", 10000, 20000)
	page2 := genRows("b", 3000, 10001) // tied with page 1's boundary value
	runner := &scriptedRunner{pages: [][]query.Row{page1, page2}}

	spec := countSpec()
	m := New(runner, withNow(fixedNow))
	rows, err := m.Materialize(context.Background(), spec)
	require.NoError(t, err)

	require.Len(t, rows, 13000)
	require.Len(t, runner.specs, 2, "short second page must end the loop")

	first, second := runner.specs[0], runner.specs[1]

	// The engine owns order, limit, and window on every page.
	require.Equal(t, []query.Order{{Target: "COUNT", Dir: query.Descending}}, first.Orders)
	require.Equal(t, 10000, first.Limit)
	require.Zero(t, first.TimeRange)
	require.Equal(t, testNow.Add(-2*time.Hour), *first.StartTime)
	require.Equal(t, testNow, *first.EndTime)
	require.Empty(t, first.Havings)

	// Page 2 continues inclusively past page 1's last-row value.
	require.Len(t, second.Havings, 1)
	require.Equal(t, query.Having{Target: "COUNT", Op: query.FilterLTE, Value: 10001.0}, second.Havings[0])
	require.Equal(t, first.StartTime.Unix(), second.StartTime.Unix(), "window must not shift between pages")
	require.Equal(t, first.EndTime.Unix(), second.EndTime.Unix())

	// The caller's spec stays untouched.
	require.Empty(t, spec.Orders)
	require.Empty(t, spec.Havings)
	require.Equal(t, 2*time.Hour, spec.TimeRange)
}

func TestMaterializeGroupingFieldSortKey(t *testing.T) {
	page1 := []query.Row{
		{"endpoint": "zz", "COUNT": 5.0},
		{"endpoint": "mm", "COUNT": 4.0},
		{"endpoint": "gg", "COUNT": 3.0},
	}
	page2 := []query.Row{
		{"endpoint": "cc", "COUNT": 2.0},
	}
	runner := &scriptedRunner{pages: [][]query.Row{page1, page2}}

	m := New(runner, withNow(fixedNow))
	rows, err := m.Materialize(context.Background(), countSpec(),
		WithSortKey("endpoint"), // matches no calculation
		WithPageSize(3),
	)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Len(t, runner.specs, 2)

	// The constraint is a pre-aggregation filter on the column, never a
	// having clause.
	second := runner.specs[1]
	require.Empty(t, second.Havings)
	require.Len(t, second.Filters, 1)
	require.Equal(t, query.Filter{Column: "endpoint", Op: query.FilterLTE, Value: "gg"}, second.Filters[0])
	require.Equal(t, []query.Order{{Target: "endpoint", Dir: query.Descending}}, second.Orders)
}

func TestMaterializeCapTruncatesInUpstreamOrder(t *testing.T) {
	page := genRows("a", 10, 100)
	runner := &scriptedRunner{pages: [][]query.Row{page, genRows("b", 10, 90)}}

	m := New(runner, withNow(fixedNow))
	rows, err := m.Materialize(context.Background(), countSpec(),
		WithPageSize(10),
		WithMaxResults(5),
	)
	require.NoError(t, err)
	require.Len(t, runner.specs, 1, "cap reached on page 1; loop must stop")
	require.Equal(t, page[:5], rows)
}

func TestMaterializeDuplicateThresholdStops(t *testing.T) {
	page1 := genRows("a", 10, 100)
	// A full page where 6 of 10 rows are already known: 60% duplicates.
	page2 := append(append([]query.Row{}, page1[4:]...), genRows("c", 4, 80)...)
	page3 := genRows("d", 10, 70)
	runner := &scriptedRunner{pages: [][]query.Row{page1, page2, page3}}

	m := New(runner, withNow(fixedNow))
	rows, err := m.Materialize(context.Background(), countSpec(), WithPageSize(10))
	require.NoError(t, err)

	require.Len(t, runner.specs, 2, "dup rate above threshold must stop the loop despite a full page")
	require.Len(t, rows, 14)
}

func TestMaterializeDuplicateThresholdIsConfigurable(t *testing.T) {
	page1 := genRows("a", 10, 100)
	page2 := append(append([]query.Row{}, page1[4:]...), genRows("c", 4, 80)...)
	runner := &scriptedRunner{pages: [][]query.Row{page1, page2}}

	m := New(runner, withNow(fixedNow))
	rows, err := m.Materialize(context.Background(), countSpec(),
		WithPageSize(10),
		WithDuplicateThreshold(0.9),
	)
	require.NoError(t, err)

	// 60% duplicates no longer trips the policy; the loop runs until the
	// script is exhausted by an empty page.
	require.Len(t, runner.specs, 3)
	require.Len(t, rows, 14)
}

func TestMaterializeShortPageIsLast(t *testing.T) {
	runner := &scriptedRunner{pages: [][]query.Row{genRows("a", 9, 100)}}

	m := New(runner, withNow(fixedNow))
	rows, err := m.Materialize(context.Background(), countSpec(), WithPageSize(10))
	require.NoError(t, err)
	require.Len(t, rows, 9)
	require.Len(t, runner.specs, 1)
}

func TestMaterializeEmptyFirstPage(t *testing.T) {
	runner := &scriptedRunner{pages: [][]query.Row{{}}}

	m := New(runner, withNow(fixedNow))
	rows, err := m.Materialize(context.Background(), countSpec())
	require.NoError(t, err)
	require.Empty(t, rows)
	require.Len(t, runner.specs, 1)
}

func TestMaterializeTiedBoundaryKeptOnce(t *testing.T) {
	// Page 1's last row and page 2's middle row share the sort-key value 7
	// but differ in breakdown values; the inclusive cursor re-delivers the
	// boundary row itself as a duplicate.
	page1 := []query.Row{
		{"endpoint": "a1", "COUNT": 9.0},
		{"endpoint": "a2", "COUNT": 8.0},
		{"endpoint": "a3", "COUNT": 7.0},
	}
	page2 := []query.Row{
		{"endpoint": "a3", "COUNT": 7.0}, // duplicate of the boundary row
		{"endpoint": "b1", "COUNT": 7.0}, // tied value, distinct identity
		{"endpoint": "b2", "COUNT": 6.0},
	}
	runner := &scriptedRunner{pages: [][]query.Row{page1, page2}}

	m := New(runner, withNow(fixedNow))
	rows, err := m.Materialize(context.Background(), countSpec(), WithPageSize(3))
	require.NoError(t, err)

	require.Len(t, rows, 5)
	tied := 0
	for _, row := range rows {
		if row["COUNT"] == 7.0 {
			tied++
		}
	}
	require.Equal(t, 2, tied, "both tied-boundary rows must appear exactly once")
}

func TestMaterializeBoundaryProgressesMonotonically(t *testing.T) {
	runner := &scriptedRunner{pages: [][]query.Row{
		genRows("a", 5, 100), // boundary 96
		genRows("b", 5, 96),  // boundary 92
		genRows("c", 5, 92),  // boundary 88
		genRows("d", 2, 88),
	}}

	m := New(runner, withNow(fixedNow))
	_, err := m.Materialize(context.Background(), countSpec(), WithPageSize(5))
	require.NoError(t, err)
	require.Len(t, runner.specs, 4)

	prev := 0.0
	for i, spec := range runner.specs[1:] {
		require.Len(t, spec.Havings, 1)
		b := spec.Havings[0].Value.(float64)
		if i > 0 {
			require.LessOrEqual(t, b, prev, "descending boundary must never regress")
		}
		prev = b
	}
}

func TestMaterializeAscending(t *testing.T) {
	runner := &scriptedRunner{pages: [][]query.Row{
		{
			{"endpoint": "a", "COUNT": 1.0},
			{"endpoint": "b", "COUNT": 2.0},
		},
		{
			{"endpoint": "c", "COUNT": 3.0},
		},
	}}

	m := New(runner, withNow(fixedNow))
	rows, err := m.Materialize(context.Background(), countSpec(),
		WithPageSize(2),
		WithSortOrder(query.Ascending),
	)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	second := runner.specs[1]
	require.Equal(t, []query.Order{{Target: "COUNT", Dir: query.Ascending}}, second.Orders)
	require.Equal(t, query.Having{Target: "COUNT", Op: query.FilterGTE, Value: 2.0}, second.Havings[0])
}

func TestMaterializeConfigErrors(t *testing.T) {
	runner := &scriptedRunner{}
	m := New(runner, withNow(fixedNow))

	_, err := m.Materialize(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoCalculations)

	_, err = m.Materialize(context.Background(), &query.Spec{Breakdowns: []string{"endpoint"}})
	require.ErrorIs(t, err, ErrNoCalculations)

	spec := countSpec()
	spec.Orders = []query.Order{{Target: "COUNT", Dir: query.Ascending}}
	_, err = m.Materialize(context.Background(), spec)
	require.ErrorIs(t, err, ErrExplicitOrder)

	require.Empty(t, runner.specs, "configuration errors must be rejected before any fetch")
}

func TestMaterializeMissingSortKey(t *testing.T) {
	// A full page whose rows lack the caller-supplied grouping field: the
	// boundary cannot be extracted, which is a fatal configuration error.
	runner := &scriptedRunner{pages: [][]query.Row{genRows("a", 3, 100)}}

	m := New(runner, withNow(fixedNow))
	rows, err := m.Materialize(context.Background(), countSpec(),
		WithSortKey("no_such_column"),
		WithPageSize(3),
	)
	require.ErrorIs(t, err, ErrMissingSortKey)
	require.Nil(t, rows)
}

func TestMaterializeRunnerErrorDiscardsProgress(t *testing.T) {
	upstream := errors.New("query rejected upstream")
	runner := &scriptedRunner{
		pages: [][]query.Row{genRows("a", 5, 100)},
		err:   upstream,
		errOn: 2,
	}

	m := New(runner, withNow(fixedNow))
	rows, err := m.Materialize(context.Background(), countSpec(), WithPageSize(5))
	require.ErrorIs(t, err, upstream)
	require.Nil(t, rows, "no partial results on failure")
}

func TestMaterializeOnPageCallback(t *testing.T) {
	runner := &scriptedRunner{pages: [][]query.Row{
		genRows("a", 5, 100),
		genRows("b", 2, 95),
	}}

	type call struct{ page, rows int }
	var calls []call

	m := New(runner, withNow(fixedNow))
	_, err := m.Materialize(context.Background(), countSpec(),
		WithPageSize(5),
		WithOnPage(func(page, rows int) {
			calls = append(calls, call{page, rows})
		}),
	)
	require.NoError(t, err)
	require.Equal(t, []call{{1, 5}, {2, 7}}, calls)
}

type fakeCache struct {
	data map[uint64][]query.Row
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[uint64][]query.Row)}
}

func (f *fakeCache) Get(key uint64) ([]query.Row, bool, error) {
	rows, ok := f.data[key]
	return rows, ok, nil
}

func (f *fakeCache) Set(key uint64, rows []query.Row) error {
	f.sets++
	f.data[key] = rows
	return nil
}

func TestMaterializeCache(t *testing.T) {
	runner := &scriptedRunner{pages: [][]query.Row{genRows("a", 5, 100)}}
	c := newFakeCache()

	m := New(runner, withNow(fixedNow), WithCache(c), WithPageSize(5))

	first, err := m.Materialize(context.Background(), countSpec())
	require.NoError(t, err)
	require.Len(t, runner.specs, 2)
	require.Equal(t, 1, c.sets)

	second, err := m.Materialize(context.Background(), countSpec())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, runner.specs, 2, "second call must be served from cache")
}
