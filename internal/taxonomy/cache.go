package taxonomy

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultCacheTTL bounds how long a fetched category list is reused.
const DefaultCacheTTL = 5 * time.Minute

// Cache stores the raw category list between fetches.
type Cache interface {
	Get(ctx context.Context) ([]Raw, bool, error)
	Set(ctx context.Context, raw []Raw) error
	Invalidate(ctx context.Context) error
}

type memoryEntry struct {
	raw       []Raw
	fetchedAt time.Time
}

// MemoryCache is a process-local TTL cache.
type MemoryCache struct {
	mu    sync.RWMutex
	entry *memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryCache creates a cache; ttl <= 0 uses DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{ttl: ttl, now: time.Now}
}

// Get returns the cached list while it is younger than the TTL.
func (c *MemoryCache) Get(context.Context) ([]Raw, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry != nil && c.now().Sub(c.entry.fetchedAt) < c.ttl {
		return c.entry.raw, true, nil
	}
	return nil, false, nil
}

// Set stores a copy of raw and restarts the TTL.
func (c *MemoryCache) Set(_ context.Context, raw []Raw) error {
	cp := make([]Raw, len(raw))
	copy(cp, raw)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = &memoryEntry{raw: cp, fetchedAt: c.now()}
	return nil
}

// Invalidate drops the cached list.
func (c *MemoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
	return nil
}

// CachedSource serves categories from Cache and falls through to Source on a miss.
// Failed fetches are never cached.
type CachedSource struct {
	source Source
	cache  Cache
	logger *zap.Logger
}

// NewCachedSource wraps source. A nil cache disables caching.
func NewCachedSource(source Source, cache Cache, logger *zap.Logger) (*CachedSource, error) {
	if source == nil {
		return nil, errors.New("taxonomy: cached source requires a source")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{source: source, cache: cache, logger: logger}, nil
}

// FetchCategories serves a cache hit or fetches and caches the source result.
func (s *CachedSource) FetchCategories(ctx context.Context) ([]Raw, error) {
	if s.cache != nil {
		raw, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("taxonomy cache read failed", zap.Error(err))
		} else if ok {
			return raw, nil
		}
	}

	raw, err := s.source.FetchCategories(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, raw); err != nil {
			s.logger.Warn("taxonomy cache write failed", zap.Error(err))
		}
	}
	return raw, nil
}
