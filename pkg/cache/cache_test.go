package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/beaconhq/beacon-go/pkg/query"
	"github.com/beaconhq/beacon-go/pkg/results"
)

// The cache must satisfy the materializer's cache contract.
var _ results.Cache = (*Cache)(nil)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)

	rows := []query.Row{
		{"endpoint": "GET /", "COUNT": 42.0},
		{"endpoint": "GET /health", "COUNT": 7.0},
	}
	require.NoError(t, c.Set(12345, rows))

	got, ok, err := c.Get(12345)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rows, got)
}

func TestCacheMiss(t *testing.T) {
	c := newTestCache(t)

	got, ok, err := c.Get(99999)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, got)
}

func TestCacheOverwrite(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Set(1, []query.Row{{"COUNT": 1.0}}))
	require.NoError(t, c.Set(1, []query.Row{{"COUNT": 2.0}}))

	got, ok, err := c.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []query.Row{{"COUNT": 2.0}}, got)
}

func TestCacheExpiry(t *testing.T) {
	c, err := New(Config{InMemory: true, TTL: 50 * time.Millisecond})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(1, []query.Row{{"COUNT": 1.0}}))
	time.Sleep(100 * time.Millisecond)

	_, ok, err := c.Get(1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheOnDisk(t *testing.T) {
	c, err := New(Config{Path: t.TempDir()})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(7, []query.Row{{"endpoint": "x"}}))
	got, ok, err := c.Get(7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
}
