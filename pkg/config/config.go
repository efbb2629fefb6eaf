package config

import "time"

// API defaults
const (
	DefaultBaseURL   = "https://api.beacon.dev"
	DefaultUserAgent = "beacon-go"
)

// HTTP client defaults
const (
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 1 * time.Second
)

// Query execution limits and defaults
const (
	// PageSize is the hard per-execution row cap enforced by the query API.
	PageSize = 10000

	// DefaultQueryWindow is used when a spec carries neither a relative
	// time range nor both absolute bounds.
	DefaultQueryWindow = 1 * time.Hour

	QueryPollInterval = 1 * time.Second
	QueryPollTimeout  = 2 * time.Minute
)

// Result materialization defaults
const (
	DefaultMaxResults = 100000

	// DuplicateStopThreshold stops pagination once more than this share of
	// a page's rows has already been seen. Past that point the engine is
	// scanning ties at the current boundary, not making progress.
	DuplicateStopThreshold = 0.5
)

// Result cache defaults
const (
	DefaultCacheTTL = 10 * time.Minute
)

// WebSocket configuration
const (
	WSReadBufferSize  = 1024
	WSWriteBufferSize = 1024
	WSEventBuffer     = 256
	WSWriteDeadline   = 10 * time.Second
	WSReadDeadline    = 60 * time.Second
	WSPingInterval    = 30 * time.Second
)
