package query

import "strings"

// CalcOp identifies an aggregate operation applied to events in the query
// window. The op name is also the field name under which the aggregate's
// value appears in result rows, unless the calculation carries an alias.
type CalcOp string

const (
	OpCount         CalcOp = "COUNT"
	OpCountDistinct CalcOp = "COUNT_DISTINCT"
	OpSum           CalcOp = "SUM"
	OpAvg           CalcOp = "AVG"
	OpMax           CalcOp = "MAX"
	OpMin           CalcOp = "MIN"
	OpP50           CalcOp = "P50"
	OpP75           CalcOp = "P75"
	OpP90           CalcOp = "P90"
	OpP95           CalcOp = "P95"
	OpP99           CalcOp = "P99"
	OpHeatmap       CalcOp = "HEATMAP"
	OpConcurrency   CalcOp = "CONCURRENCY"
	OpRateAvg       CalcOp = "RATE_AVG"
	OpRateSum       CalcOp = "RATE_SUM"
	OpRateMax       CalcOp = "RATE_MAX"
)

// RequiresColumn reports whether the op aggregates over a specific column.
// COUNT and CONCURRENCY operate on whole events and take no column.
func (op CalcOp) RequiresColumn() bool {
	switch op {
	case OpCount, OpConcurrency:
		return false
	}
	return true
}

// Name returns the canonical uppercase op name.
func (op CalcOp) Name() string {
	return strings.ToUpper(string(op))
}

// FilterOp is a comparison operator used by filters and havings.
type FilterOp string

const (
	FilterEq           FilterOp = "="
	FilterNeq          FilterOp = "!="
	FilterGT           FilterOp = ">"
	FilterGTE          FilterOp = ">="
	FilterLT           FilterOp = "<"
	FilterLTE          FilterOp = "<="
	FilterStartsWith   FilterOp = "starts-with"
	FilterContains     FilterOp = "contains"
	FilterExists       FilterOp = "exists"
	FilterDoesNotExist FilterOp = "does-not-exist"
	FilterIn           FilterOp = "in"
	FilterNotIn        FilterOp = "not-in"
)

// Direction orders results on a single sort key.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// CombinationOp combines a spec's filters.
type CombinationOp string

const (
	CombineAnd CombinationOp = "AND"
	CombineOr  CombinationOp = "OR"
)
