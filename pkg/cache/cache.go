// Package cache is an optional on-disk store for completed query
// materializations, keyed by a digest of the query and its normalized time
// window. Entries expire by TTL; only finished results are ever stored.
package cache

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/beaconhq/beacon-go/pkg/config"
	"github.com/beaconhq/beacon-go/pkg/query"
)

// Cache stores materialized result sets in BadgerDB.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// Config holds cache configuration.
type Config struct {
	// Path to store database files.
	Path string

	// InMemory mode (for testing).
	InMemory bool

	// TTL after which entries expire. Defaults to config.DefaultCacheTTL.
	TTL time.Duration
}

// New opens a cache.
func New(cfg Config) (*Cache, error) {
	opts := badger.DefaultOptions(cfg.Path)

	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}

	// The cache holds a handful of large JSON blobs, not a write-heavy
	// time-series workload; keep Badger's footprint small.
	opts = opts.
		WithCompression(options.Snappy).
		WithNumVersionsToKeep(1).
		WithMemTableSize(16 << 20).
		WithNumMemtables(2).
		WithValueLogFileSize(64 << 20).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = config.DefaultCacheTTL
	}

	return &Cache{db: db, ttl: ttl}, nil
}

// Get returns the rows stored under key, reporting whether the key was found.
func (c *Cache) Get(key uint64) ([]query.Row, bool, error) {
	var rows []query.Row
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rows)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return rows, true, nil
}

// Set stores rows under key with the cache's TTL.
func (c *Cache) Set(key uint64, rows []query.Row) error {
	val, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(encodeKey(key), val).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func encodeKey(key uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, key)
	return buf
}
