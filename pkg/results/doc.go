/*
Package results materializes query result sets larger than the query API's
per-execution cap.

The API returns at most 10,000 rows per execution and honors a single sort
key. To fetch everything, the Materializer re-executes a modified clone of
the query per page: the time window is pinned to one absolute interval up
front, the sort order is fixed on a resolved key, and each subsequent page
adds an inclusive constraint continuing past the previous page's boundary
value. Because the upstream engine delivers rows at-least-once across
executions sharing a boundary, rows are deduplicated by their composite
identity (breakdown values plus calculation values).

	m := results.New(client.QueryRunner("production"))
	rows, err := m.Materialize(ctx, spec,
	    results.WithSortKey("COUNT"),
	    results.WithMaxResults(50000),
	    results.WithOnPage(func(page, total int) {
	        log.Printf("page %d: %d rows", page, total)
	    }),
	)

Pagination is strictly sequential: page N+1 cannot be built without the
boundary observed on page N. Cancellation rides on the per-page context; the
engine keeps no timer of its own.
*/
package results
