// Package stream tails live events from a dataset over WebSocket.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/beaconhq/beacon-go/pkg/config"
	"github.com/beaconhq/beacon-go/pkg/query"
)

// Event is one live event delivered on the tail stream.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      query.Row `json:"data"`
}

// Client dials the live event stream endpoint.
type Client struct {
	baseURL string
	apiKey  string
	dialer  *websocket.Dialer
	logger  *slog.Logger
}

// Option configures a stream Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDialer sets a custom WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = d
	}
}

// New creates a stream client against the given API base URL.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		dialer: &websocket.Dialer{
			ReadBufferSize:  config.WSReadBufferSize,
			WriteBufferSize: config.WSWriteBufferSize,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tail opens a live event stream for a dataset. Events arrive on the
// returned channel until ctx is canceled or the connection drops; the
// channel is closed either way.
func (c *Client) Tail(ctx context.Context, dataset string) (<-chan Event, error) {
	endpoint, err := c.streamURL(dataset)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("X-Beacon-Key", c.apiKey)

	conn, resp, err := c.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial stream: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial stream: %w", err)
	}

	events := make(chan Event, config.WSEventBuffer)

	conn.SetReadDeadline(time.Now().Add(config.WSReadDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(config.WSReadDeadline))
	})

	// Keepalive. The read loop owns the connection's lifetime; this
	// goroutine only pings and closes the conn when ctx ends, which in
	// turn unblocks the reader.
	go func() {
		ticker := time.NewTicker(config.WSPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-ticker.C:
				deadline := time.Now().Add(config.WSWriteDeadline)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					c.logger.Debug("stream ping failed", "dataset", dataset, "err", err)
					conn.Close()
					return
				}
			}
		}
	}()

	go func() {
		defer close(events)
		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					c.logger.Warn("stream read failed", "dataset", dataset, "err", err)
				}
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

func (c *Client) streamURL(dataset string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/1/stream/" + url.PathEscape(dataset)
	return u.String(), nil
}
