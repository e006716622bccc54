// Package cache provides bounded, least-recently-used memoization of sky
// computations keyed by location and instant.
package cache

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"go-nightsky/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Key identifies a computation.
type Key struct {
	Latitude  float64
	Longitude float64
	Instant   time.Time
}

// KeyFunc canonicalizes a Key into its cache key.
type KeyFunc func(Key) string

// ExactKey uses the coordinates as given and the instant at second
// precision in UTC. Coordinates that differ only in their last bits
// map to different entries.
func ExactKey(k Key) string {
	return strconv.FormatFloat(k.Latitude, 'g', -1, 64) + "|" +
		strconv.FormatFloat(k.Longitude, 'g', -1, 64) + "|" +
		k.Instant.UTC().Truncate(time.Second).Format(domain.InstantLayout)
}

// RoundedKey returns a KeyFunc that rounds the coordinates to decimals
// places before formatting.
func RoundedKey(decimals int) KeyFunc {
	scale := math.Pow(10, float64(decimals))
	round := func(v float64) float64 {
		r := math.Round(v*scale) / scale
		if r == 0 {
			// Fold -0 into 0.
			return 0
		}
		return r
	}
	return func(k Key) string {
		return ExactKey(Key{Latitude: round(k.Latitude), Longitude: round(k.Longitude), Instant: k.Instant})
	}
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	key    KeyFunc
	clock  func() time.Time
	logger *slog.Logger
}

// WithKeyFunc sets the key canonicalization, ExactKey by default.
func WithKeyFunc(fn KeyFunc) Option {
	return func(o *options) { o.key = fn }
}

// WithClock sets the clock used to time lookups, time.Now by default.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithLogger sets the logger hits and misses are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Cache memoizes values of type V. Values must not be modified once
// stored. A Cache is safe for concurrent use; concurrent misses for the
// same key may each compute, the last one stored wins.
type Cache[V any] struct {
	name     string
	capacity int
	opts     options
	lru      *lru.Cache[string, V]

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// New creates a Cache holding at most capacity entries.
func New[V any](name string, capacity int, opts ...Option) (*Cache[V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache %s: capacity must be positive, got %d", name, capacity)
	}
	c := &Cache[V]{
		name:     name,
		capacity: capacity,
		opts: options{
			key:    ExactKey,
			clock:  time.Now,
			logger: slog.New(slog.DiscardHandler),
		},
	}
	for _, fn := range opts {
		fn(&c.opts)
	}
	l, err := lru.NewWithEvict(capacity, func(key string, _ V) {
		c.evictions.Add(1)
		c.opts.logger.Debug("cache evict", "cache", c.name, "key", key)
	})
	if err != nil {
		return nil, fmt.Errorf("cache %s: %w", name, err)
	}
	c.lru = l
	return c, nil
}

// Get returns the value stored for k, calling compute and storing its
// result on a miss. Errors are returned and not stored.
func (c *Cache[V]) Get(k Key, compute func() (V, error)) (V, error) {
	key := c.opts.key(k)
	start := c.opts.clock()
	if v, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		c.opts.logger.Debug("cache hit", "cache", c.name, "key", key, "took", c.opts.clock().Sub(start))
		return v, nil
	}
	c.misses.Add(1)
	v, err := compute()
	if err != nil {
		c.opts.logger.Debug("cache miss", "cache", c.name, "key", key, "took", c.opts.clock().Sub(start), "error", err)
		return v, err
	}
	c.lru.Add(key, v)
	c.opts.logger.Debug("cache miss", "cache", c.name, "key", key, "took", c.opts.clock().Sub(start))
	return v, nil
}

// contains reports whether k is cached without updating its recency.
func (c *Cache[V]) contains(k Key) bool {
	return c.lru.Contains(c.opts.key(k))
}

// Stats returns the cache's counters.
func (c *Cache[V]) Stats() domain.CacheStats {
	return domain.CacheStats{
		Name:      c.name,
		Capacity:  c.capacity,
		Len:       c.lru.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
