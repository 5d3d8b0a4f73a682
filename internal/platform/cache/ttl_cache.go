package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
)

// Lookup results reported to the Recorder.
const (
	ResultHit          = "hit"
	ResultMiss         = "miss"
	ResultStale        = "stale"
	ResultRefreshError = "refresh_error"
)

// Recorder receives one call per lookup. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordCacheLookup(cache, result string)
}

// RefreshFunc loads a fresh value for a key.
type RefreshFunc[T any] func(ctx context.Context) (T, error)

// Entry is a cached value with the time it was fetched.
type Entry[T any] struct {
	Key       string
	Value     T
	FetchedAt time.Time
	TTL       time.Duration
}

// Live reports whether the entry may still be served at now.
func (e Entry[T]) Live(now time.Time) bool {
	return now.Sub(e.FetchedAt) < e.TTL
}

// TTLCache is a keyed read-through cache. Entries are never evicted on expiry:
// the last good value stays around so it can be served when a refresh fails.
type TTLCache[T any] struct {
	name     string
	mu       sync.RWMutex
	entries  map[string]Entry[T]
	flight   singleflight.Group
	logger   *logging.Logger
	recorder Recorder
	now      func() time.Time
}

type Option[T any] func(*TTLCache[T])

func WithLogger[T any](logger *logging.Logger) Option[T] {
	return func(c *TTLCache[T]) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithRecorder[T any](recorder Recorder) Option[T] {
	return func(c *TTLCache[T]) {
		c.recorder = recorder
	}
}

func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *TTLCache[T]) {
		if now != nil {
			c.now = now
		}
	}
}

func NewTTLCache[T any](name string, opts ...Option[T]) *TTLCache[T] {
	c := &TTLCache[T]{
		name:    name,
		entries: make(map[string]Entry[T]),
		logger:  logging.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("cache", name)
	return c
}

// GetOrRefresh never fails: it returns the live value, a fresh one, the stale
// value when refresh fails, or the zero value when nothing was ever cached.
func (c *TTLCache[T]) GetOrRefresh(ctx context.Context, key string, ttl time.Duration, refresh RefreshFunc[T]) T {
	value, _ := c.Load(ctx, key, ttl, refresh)
	return value
}

// Load is GetOrRefresh that also reports the refresh error when no stale value
// could be served. The returned value is always usable.
func (c *TTLCache[T]) Load(ctx context.Context, key string, ttl time.Duration, refresh RefreshFunc[T]) (T, error) {
	if entry, ok := c.Peek(key); ok && entry.Live(c.now()) {
		c.record(ResultHit)
		return entry.Value, nil
	}

	result, err, _ := c.flight.Do(key, func() (any, error) {
		// another caller may have refreshed while we waited for the flight slot
		if entry, ok := c.Peek(key); ok && entry.Live(c.now()) {
			return entry.Value, nil
		}
		fresh, err := refresh(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, fresh, ttl)
		return fresh, nil
	})
	if err == nil {
		c.record(ResultMiss)
		value, _ := result.(T)
		return value, nil
	}

	if entry, ok := c.Peek(key); ok {
		c.record(ResultStale)
		c.logger.WarnContext(ctx, "cache refresh failed, serving stale value",
			"key", key,
			"age", c.now().Sub(entry.FetchedAt).String(),
			"error", err,
		)
		return entry.Value, nil
	}

	c.record(ResultRefreshError)
	c.logger.WarnContext(ctx, "cache refresh failed, no value to serve", "key", key, "error", err)
	var zero T
	return zero, err
}

// Peek returns the entry for key regardless of its age.
func (c *TTLCache[T]) Peek(key string) (Entry[T], bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	return entry, ok
}

func (c *TTLCache[T]) Set(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = Entry[T]{
		Key:       key,
		Value:     value,
		FetchedAt: c.now(),
		TTL:       ttl,
	}
	c.mu.Unlock()
}

func (c *TTLCache[T]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *TTLCache[T]) DeletePrefix(prefix string) {
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// Purge drops every entry.
func (c *TTLCache[T]) Purge() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

func (c *TTLCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *TTLCache[T]) record(result string) {
	if c.recorder != nil {
		c.recorder.RecordCacheLookup(c.name, result)
	}
}
