package results

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/beaconhq/beacon-go/pkg/query"
)

// deduplicator accumulates rows across pages, dropping rows whose composite
// identity has been seen before. The upstream engine delivers rows
// at-least-once across executions covering the same boundary value, so
// duplicates near a page boundary are expected steady state, not an anomaly.
type deduplicator struct {
	// fields is the fixed identity order: breakdown columns first, then
	// calculation accessors.
	fields []string
	seen   map[uint64]struct{}
	rows   []query.Row
}

func newDeduplicator(breakdowns []string, calcs []query.Calculation) *deduplicator {
	fields := slices.Clone(breakdowns)
	for _, c := range calcs {
		fields = append(fields, c.Accessor())
	}
	return &deduplicator{
		fields: fields,
		seen:   make(map[uint64]struct{}),
	}
}

// identity digests the row's identity fields in fixed order. Two distinct
// upstream rows sharing every breakdown and calculation value collapse into
// one; the upstream engine exposes no stable row id to do better with.
func (d *deduplicator) identity(row query.Row) uint64 {
	h := xxhash.New()
	for _, f := range d.fields {
		fmt.Fprintf(h, "%v\x1f", row[f])
	}
	return h.Sum64()
}

// absorb folds one page into the accumulated result and returns how many of
// its rows were new. Seen rows are discarded silently.
func (d *deduplicator) absorb(page []query.Row) int {
	added := 0
	for _, row := range page {
		id := d.identity(row)
		if _, dup := d.seen[id]; dup {
			continue
		}
		d.seen[id] = struct{}{}
		d.rows = append(d.rows, row)
		added++
	}
	return added
}

func (d *deduplicator) count() int {
	return len(d.rows)
}

// truncate caps the accumulated rows, keeping the earliest encountered.
func (d *deduplicator) truncate(n int) {
	if len(d.rows) > n {
		d.rows = d.rows[:n]
	}
}
