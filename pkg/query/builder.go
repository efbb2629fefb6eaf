package query

import "time"

// Builder composes a Spec fluently. A Builder is single-use and not safe for
// concurrent use; call Build to validate and obtain the finished spec.
type Builder struct {
	spec Spec
}

// NewBuilder returns an empty query builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Calculate appends a calculation. Pass an empty column for ops that take
// none (COUNT, CONCURRENCY).
func (b *Builder) Calculate(op CalcOp, column string) *Builder {
	b.spec.Calculations = append(b.spec.Calculations, Calculation{Op: op, Column: column})
	return b
}

// As aliases the most recently added calculation.
func (b *Builder) As(alias string) *Builder {
	if n := len(b.spec.Calculations); n > 0 {
		b.spec.Calculations[n-1].Alias = alias
	}
	return b
}

// GroupBy appends breakdown columns.
func (b *Builder) GroupBy(columns ...string) *Builder {
	b.spec.Breakdowns = append(b.spec.Breakdowns, columns...)
	return b
}

// Where appends a pre-aggregation filter.
func (b *Builder) Where(column string, op FilterOp, value any) *Builder {
	b.spec.Filters = append(b.spec.Filters, Filter{Column: column, Op: op, Value: value})
	return b
}

// CombineOr switches the filter combination from the default AND to OR.
func (b *Builder) CombineOr() *Builder {
	b.spec.FilterCombination = CombineOr
	return b
}

// Having appends a post-aggregation constraint on a calculation accessor.
func (b *Builder) Having(target string, op FilterOp, value any) *Builder {
	b.spec.Havings = append(b.spec.Havings, Having{Target: target, Op: op, Value: value})
	return b
}

// Since sets a relative time window reaching back d from now.
func (b *Builder) Since(d time.Duration) *Builder {
	b.spec.TimeRange = d
	return b
}

// Between sets an absolute time window.
func (b *Builder) Between(start, end time.Time) *Builder {
	b.spec.StartTime = &start
	b.spec.EndTime = &end
	return b
}

// From sets only the absolute start bound; the window extends TimeRange
// (or the server default) forward from it.
func (b *Builder) From(start time.Time) *Builder {
	b.spec.StartTime = &start
	return b
}

// Until sets only the absolute end bound; the window extends TimeRange
// (or the server default) back from it.
func (b *Builder) Until(end time.Time) *Builder {
	b.spec.EndTime = &end
	return b
}

// OrderBy sets an explicit result order. Specs handed to the materialization
// engine must not carry one; the engine owns ordering while it paginates.
func (b *Builder) OrderBy(target string, dir Direction) *Builder {
	b.spec.Orders = append(b.spec.Orders, Order{Target: target, Dir: dir})
	return b
}

// Limit caps the number of result rows.
func (b *Builder) Limit(n int) *Builder {
	b.spec.Limit = n
	return b
}

// Build validates and returns the spec.
func (b *Builder) Build() (*Spec, error) {
	if err := b.spec.Validate(); err != nil {
		return nil, err
	}
	return b.spec.Clone(), nil
}
