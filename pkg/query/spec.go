package query

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Row is one result row: field name to value. Breakdown columns appear under
// their own names, calculation values under the calculation's accessor.
type Row = map[string]any

// Calculation is an aggregate operation, optionally over a column, optionally
// named via an alias.
type Calculation struct {
	Op     CalcOp `json:"op"`
	Column string `json:"column,omitempty"`
	Alias  string `json:"alias,omitempty"`
}

// Accessor returns the field name under which this calculation's value
// appears in result rows: the alias when present, else the uppercase op name.
func (c Calculation) Accessor() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Op.Name()
}

// Filter is a pre-aggregation constraint on raw events.
type Filter struct {
	Column string   `json:"column"`
	Op     FilterOp `json:"op"`
	Value  any      `json:"value,omitempty"`
}

// Having is a post-aggregation constraint on a calculation's value,
// identified by the calculation's accessor.
type Having struct {
	Target string   `json:"target"`
	Op     FilterOp `json:"op"`
	Value  any      `json:"value,omitempty"`
}

// Order sorts results by a calculation accessor or a breakdown column.
type Order struct {
	Target string    `json:"target"`
	Dir    Direction `json:"direction"`
}

// Spec is a query specification submitted to the query API.
//
// The time window is either relative (TimeRange back from now) or absolute
// (StartTime/EndTime); setting TimeRange together with both absolute bounds
// is invalid. A single absolute bound combines with TimeRange.
type Spec struct {
	TimeRange time.Duration
	StartTime *time.Time
	EndTime   *time.Time

	Calculations      []Calculation
	Breakdowns        []string
	Filters           []Filter
	FilterCombination CombinationOp
	Havings           []Having
	Orders            []Order
	Limit             int
}

// specWire is the API representation: times as unix seconds, time range in
// seconds.
type specWire struct {
	TimeRange         int64         `json:"time_range,omitempty"`
	StartTime         int64         `json:"start_time,omitempty"`
	EndTime           int64         `json:"end_time,omitempty"`
	Calculations      []Calculation `json:"calculations,omitempty"`
	Breakdowns        []string      `json:"breakdowns,omitempty"`
	Filters           []Filter      `json:"filters,omitempty"`
	FilterCombination CombinationOp `json:"filter_combination,omitempty"`
	Havings           []Having      `json:"havings,omitempty"`
	Orders            []Order       `json:"orders,omitempty"`
	Limit             int           `json:"limit,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s *Spec) MarshalJSON() ([]byte, error) {
	w := specWire{
		TimeRange:         int64(s.TimeRange / time.Second),
		Calculations:      s.Calculations,
		Breakdowns:        s.Breakdowns,
		Filters:           s.Filters,
		FilterCombination: s.FilterCombination,
		Havings:           s.Havings,
		Orders:            s.Orders,
		Limit:             s.Limit,
	}
	if s.StartTime != nil {
		w.StartTime = s.StartTime.Unix()
	}
	if s.EndTime != nil {
		w.EndTime = s.EndTime.Unix()
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var w specWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Spec{
		TimeRange:         time.Duration(w.TimeRange) * time.Second,
		Calculations:      w.Calculations,
		Breakdowns:        w.Breakdowns,
		Filters:           w.Filters,
		FilterCombination: w.FilterCombination,
		Havings:           w.Havings,
		Orders:            w.Orders,
		Limit:             w.Limit,
	}
	if w.StartTime != 0 {
		t := time.Unix(w.StartTime, 0).UTC()
		s.StartTime = &t
	}
	if w.EndTime != 0 {
		t := time.Unix(w.EndTime, 0).UTC()
		s.EndTime = &t
	}
	return nil
}

// Clone returns a deep copy. Callers that need to mutate a spec per request
// must clone it first; the original is never modified by this SDK.
func (s *Spec) Clone() *Spec {
	c := *s
	if s.StartTime != nil {
		t := *s.StartTime
		c.StartTime = &t
	}
	if s.EndTime != nil {
		t := *s.EndTime
		c.EndTime = &t
	}
	c.Calculations = slices.Clone(s.Calculations)
	c.Breakdowns = slices.Clone(s.Breakdowns)
	c.Filters = slices.Clone(s.Filters)
	c.Havings = slices.Clone(s.Havings)
	c.Orders = slices.Clone(s.Orders)
	return &c
}

// Validate checks internal coherence before the spec is sent upstream.
func (s *Spec) Validate() error {
	if s.TimeRange < 0 {
		return fmt.Errorf("query: negative time range %v", s.TimeRange)
	}
	if s.TimeRange > 0 && s.StartTime != nil && s.EndTime != nil {
		return fmt.Errorf("query: time_range and absolute start/end are mutually exclusive")
	}
	if s.StartTime != nil && s.EndTime != nil && !s.EndTime.After(*s.StartTime) {
		return fmt.Errorf("query: end time %v not after start time %v", s.EndTime, s.StartTime)
	}
	for _, c := range s.Calculations {
		if c.Op == "" {
			return fmt.Errorf("query: calculation missing op")
		}
		if c.Op.RequiresColumn() && c.Column == "" {
			return fmt.Errorf("query: %s requires a column", c.Op)
		}
		if !c.Op.RequiresColumn() && c.Column != "" {
			return fmt.Errorf("query: %s takes no column, got %q", c.Op, c.Column)
		}
	}
	for _, f := range s.Filters {
		if f.Column == "" {
			return fmt.Errorf("query: filter missing column")
		}
	}
	if s.Limit < 0 {
		return fmt.Errorf("query: negative limit %d", s.Limit)
	}
	return nil
}
