/*
Package query models Beacon query specifications.

A Spec describes an analytics query: a time window, aggregate calculations,
breakdown columns, pre-aggregation filters, and post-aggregation havings.
Specs are composed directly or with the fluent Builder:

	spec, err := query.NewBuilder().
	    Calculate(query.OpCount, "").
	    Calculate(query.OpP99, "duration_ms").As("p99_latency").
	    GroupBy("service", "endpoint").
	    Where("status_code", query.FilterGTE, 500).
	    Since(2 * time.Hour).
	    Build()

The query API executes specs server-side and caps every execution at 10,000
rows. To retrieve result sets past that cap, hand the spec to the results
package rather than executing it directly.
*/
package query
