package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/beaconhq/beacon-go/pkg/config"
)

// Client provides access to the Beacon REST API.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// New creates an API client authenticated with the given key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:   config.DefaultBaseURL,
		apiKey:    apiKey,
		userAgent: config.DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: config.DefaultHTTPTimeout,
		},
		logger:       slog.Default(),
		maxRetries:   config.DefaultMaxRetries,
		retryBackoff: config.DefaultRetryBackoff,
		pollInterval: config.QueryPollInterval,
		pollTimeout:  config.QueryPollTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithBaseURL points the client at a non-default API host.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration for retryable API errors.
func WithRetries(max int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithQueryPolling sets the cadence and deadline for query-result polling.
func WithQueryPolling(interval, timeout time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = interval
		c.pollTimeout = timeout
	}
}
