package results

import (
	"strings"

	"github.com/beaconhq/beacon-go/pkg/query"
)

type targetKind int

const (
	targetCalculation targetKind = iota
	targetGroupingField
)

// SortTarget identifies the pagination key: either a calculation, addressed
// by its accessor, or a breakdown column, addressed by name. It is resolved
// once per materialization and immutable afterwards.
type SortTarget struct {
	kind targetKind
	key  string
}

// CalculationTarget returns a SortTarget for a calculation accessor.
func CalculationTarget(accessor string) SortTarget {
	return SortTarget{kind: targetCalculation, key: accessor}
}

// GroupingFieldTarget returns a SortTarget for a breakdown column.
func GroupingFieldTarget(column string) SortTarget {
	return SortTarget{kind: targetGroupingField, key: column}
}

// IsCalculation reports whether the target is a calculation accessor.
func (t SortTarget) IsCalculation() bool {
	return t.kind == targetCalculation
}

// Key returns the field name under which the target's value appears in
// result rows. It doubles as the order target sent upstream.
func (t SortTarget) Key() string {
	return t.key
}

// resolveSortKey determines the pagination key for a spec.
//
// With no name, the first calculation is the key. A supplied name is matched
// case-insensitively against calculation op names first, then exactly against
// aliases; the first calculation matched, in spec order, wins. A name that
// matches no calculation is taken verbatim as a grouping field; whether it
// names a real column is only discovered when rows come back.
func resolveSortKey(calcs []query.Calculation, name string) SortTarget {
	if name == "" {
		return CalculationTarget(calcs[0].Accessor())
	}
	for _, c := range calcs {
		if strings.EqualFold(c.Op.Name(), name) {
			return CalculationTarget(c.Accessor())
		}
	}
	for _, c := range calcs {
		if c.Alias != "" && c.Alias == name {
			return CalculationTarget(c.Accessor())
		}
	}
	return GroupingFieldTarget(name)
}
