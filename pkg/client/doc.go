/*
Package client is the low-level Beacon API client: authentication, retries,
and resource CRUD for datasets, columns, triggers, SLOs, boards, and markers.

	c := client.New(os.Getenv("BEACON_API_KEY"))
	datasets, err := c.ListDatasets(ctx)

Query execution goes through RunQuery, which saves the spec, starts an
execution, and polls until the upstream marks it complete. Executions are
capped at 10,000 rows; use the results package to page past the cap.
*/
package client
