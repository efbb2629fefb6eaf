package results

import "github.com/beaconhq/beacon-go/pkg/query"

// cursorOp returns the comparison that continues past the boundary in the
// given direction. Inclusive on purpose: the upstream page boundary is not
// strict, so rows tied with the boundary value may still be unseen.
func cursorOp(dir query.Direction) query.FilterOp {
	if dir == query.Ascending {
		return query.FilterGTE
	}
	return query.FilterLTE
}

// applyCursor attaches the next-page constraint to a page spec. Calculation
// keys constrain post-aggregation via a having; grouping-field keys constrain
// the raw events via a filter.
func applyCursor(spec *query.Spec, target SortTarget, dir query.Direction, boundary any) {
	op := cursorOp(dir)
	if target.IsCalculation() {
		spec.Havings = append(spec.Havings, query.Having{Target: target.Key(), Op: op, Value: boundary})
		return
	}
	spec.Filters = append(spec.Filters, query.Filter{Column: target.Key(), Op: op, Value: boundary})
}

// pinOrder fixes the page spec's sort on the resolved target so the upstream
// engine returns rows in a stable, monotonically progressing order.
func pinOrder(spec *query.Spec, target SortTarget, dir query.Direction) {
	spec.Orders = []query.Order{{Target: target.Key(), Dir: dir}}
}
