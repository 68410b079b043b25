// Package cache memoizes analyses by content.
//
// A Cache maps a 64-bit key to a compressed snapshot. Keys come from Key,
// which hashes every observation of a table together with the analysis
// settings, so two calls over the same data and settings share one entry:
//
//	c, err := cache.New(cache.WithMaxEntries(64))
//	if err != nil {
//	    return err
//	}
//	key := cache.Key(tbl, cfg)
//	snap, hit, err := c.GetOrCompute(key, func() (*snapshot.Snapshot, error) {
//	    return analyze(tbl, cfg)
//	})
//
// Entries are stored encoded, so a cached snapshot is decoded into a fresh
// value on every hit and callers may modify what they get back. The cache is
// safe for concurrent use. Eviction is first-in first-out.
package cache

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/odysseylab/odyssey/compress"
	"github.com/odysseylab/odyssey/growth"
	"github.com/odysseylab/odyssey/internal/hash"
	"github.com/odysseylab/odyssey/internal/options"
	"github.com/odysseylab/odyssey/series"
	"github.com/odysseylab/odyssey/snapshot"
)

// Key fingerprints an analysis of tbl under cfg.
//
// Observations are hashed in table order. A nil cfg hashes as the default
// configuration.
func Key(tbl *series.Table, cfg *growth.Config) uint64 {
	if cfg == nil {
		cfg = growth.DefaultConfig()
	}

	b := hash.NewBuilder().Uint64(cfg.Key()).Int(tbl.Len())
	if tbl != nil {
		for _, row := range tbl.Rows {
			b.Float64(row.Time).String(row.Treatment).Int(row.Replicate).Float64(row.OD)
		}
	}

	return b.Sum()
}

// Stats counts cache activity since creation.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	// Bytes is the total encoded size of the stored snapshots.
	Bytes int
}

// Cache is a bounded store of encoded snapshots.
type Cache struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	entries map[uint64][]byte
	order   []uint64
	stats   Stats
}

// New creates a cache.
//
// Parameters:
//   - opts: Cache options
//
// Returns:
//   - *Cache: Empty cache
//   - error: ErrInvalidConfig for an invalid option
func New(opts ...Option) (*Cache, error) {
	cfg := Config{
		MaxEntries:  DefaultMaxEntries,
		Compression: compress.CompressionZstd,
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Cache{
		cfg:     cfg,
		logger:  logger,
		entries: make(map[uint64][]byte, cfg.MaxEntries),
	}, nil
}

// Get returns a decoded copy of the snapshot stored under key.
//
// An entry that fails to decode is dropped and reported as a miss.
func (c *Cache) Get(key uint64) (*snapshot.Snapshot, bool) {
	c.mu.Lock()
	data, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		c.mu.Unlock()
		c.logger.Debug("cache miss", slog.Uint64("key", key))

		return nil, false
	}
	c.mu.Unlock()

	snap, err := snapshot.Decode(data)
	if err != nil {
		c.logger.Warn("dropping undecodable cache entry", slog.Uint64("key", key), slog.Any("error", err))
		c.mu.Lock()
		c.remove(key)
		c.stats.Misses++
		c.mu.Unlock()

		return nil, false
	}

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
	c.logger.Debug("cache hit", slog.Uint64("key", key))

	return snap, true
}

// Put encodes snap and stores it under key, replacing any previous entry.
//
// Returns:
//   - error: Snapshot encoding error; the cache is left unchanged
func (c *Cache) Put(key uint64, snap *snapshot.Snapshot) error {
	data, stats, err := snapshot.EncodeWithStats(snap, snapshot.WithCompression(c.cfg.Compression))
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}

	c.mu.Lock()
	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	for len(c.order) >= c.cfg.MaxEntries {
		c.remove(c.order[0])
		c.stats.Evictions++
	}
	c.entries[key] = data
	c.order = append(c.order, key)
	c.stats.Bytes += len(data)
	c.mu.Unlock()

	c.logger.Debug("cache store",
		slog.Uint64("key", key),
		slog.String("codec", stats.Algorithm.String()),
		slog.Int("bytes", len(data)),
		slog.Float64("ratio", stats.CompressionRatio()),
	)

	return nil
}

// GetOrCompute returns the snapshot under key, calling compute and storing
// its result on a miss.
//
// Concurrent misses on the same key may each call compute; the last store wins.
//
// Returns:
//   - *snapshot.Snapshot: Cached or computed snapshot
//   - bool: Whether the snapshot came from the cache
//   - error: compute or encoding error; nothing is stored on error
func (c *Cache) GetOrCompute(key uint64, compute func() (*snapshot.Snapshot, error)) (*snapshot.Snapshot, bool, error) {
	if snap, ok := c.Get(key); ok {
		return snap, true, nil
	}

	snap, err := compute()
	if err != nil {
		return nil, false, err
	}
	if err := c.Put(key, snap); err != nil {
		return nil, false, err
	}

	return snap, false, nil
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Stats returns a copy of the activity counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stats
}

// Clear removes every entry. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.order = c.order[:0]
	c.stats.Bytes = 0
}

// remove deletes key. The caller holds mu.
func (c *Cache) remove(key uint64) {
	data, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	c.stats.Bytes -= len(data)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
