package searchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tejaspanchall/BookCafe-Backend/internal/db"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/query"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/request"
)

// Defaults for Config.
const (
	DefaultKeyPrefix = "books:search:"
	DefaultTTL       = time.Hour
	invalidateBatch  = 10
)

// searcher is the decorated search contract.
type searcher interface {
	Search(ctx context.Context, req *request.Request) ([]string, error)
}

// store is the consumer interface for the shared cache tier (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Config tunes the cache tiers. A zero LocalSize disables the in-process tier.
type Config struct {
	KeyPrefix string
	TTL       time.Duration
	LocalSize int
	LocalTTL  time.Duration
}

// Cache memoizes ranked ID lists per (mode, folded query) in an optional
// in-process LRU and an optional shared key-value store. Cache faults are
// logged and bypassed; only the inner search can fail a call.
type Cache struct {
	inner      searcher
	store      store
	local      *expirable.LRU[string, []string]
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. s may be nil.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner searcher,
	s store,
	cfg Config,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.LocalTTL <= 0 {
		cfg.LocalTTL = cfg.TTL
	}

	c := &Cache{
		inner:      inner,
		store:      s,
		prefix:     cfg.KeyPrefix,
		ttl:        cfg.TTL,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
	if cfg.LocalSize > 0 {
		c.local = expirable.NewLRU[string, []string](cfg.LocalSize, nil, cfg.LocalTTL)
	}
	return c
}

// Search returns the cached ranking or runs the inner search and caches its
// full result. The request limit is applied after the cache.
func (c *Cache) Search(ctx context.Context, req *request.Request) ([]string, error) {
	if req.Empty() {
		return c.inner.Search(ctx, req)
	}

	key := c.Key(req)
	if ids, ok := c.get(ctx, key); ok {
		c.incCache("hit")
		return truncate(ids, req.Limit()), nil
	}
	c.incCache("miss")

	ids, err := c.inner.Search(ctx, req.WithoutLimit())
	if err != nil {
		// The decorator is transparent: callers add their own context.
		return nil, err
	}

	c.put(ctx, key, ids)
	return truncate(ids, req.Limit()), nil
}

// Key returns the cache key for a request: prefix, mode and folded query.
func (c *Cache) Key(req *request.Request) string {
	return c.prefix + string(req.Mode()) + ":" + query.Fold(req.Normalized())
}

// Invalidate drops every cached ranking. Shared keys are deleted in small
// batches; a failed batch is retried key by key. Returns the number of
// shared keys removed.
func (c *Cache) Invalidate(ctx context.Context) (int, error) {
	if c.local != nil {
		c.local.Purge()
	}
	if c.store == nil {
		return 0, nil
	}

	keys, err := c.store.Scan(ctx, c.prefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scan cache keys: %w", err)
	}

	deleted, failed := 0, 0
	for start := 0; start < len(keys); start += invalidateBatch {
		end := min(start+invalidateBatch, len(keys))
		batch := keys[start:end]
		err := c.store.Del(ctx, batch...)
		if err == nil {
			deleted += len(batch)
			continue
		}
		c.logger.Warn("Failed to delete cache batch, retrying per key",
			zap.Int("keys", len(batch)), zap.Error(err))
		for _, k := range batch {
			if err := c.store.Del(ctx, k); err != nil {
				c.logger.Warn("Failed to delete cache key", zap.String("key", k), zap.Error(err))
				failed++
				continue
			}
			deleted++
		}
	}

	c.logger.Info("Search cache invalidated", zap.Int("deleted", deleted), zap.Int("failed", failed))
	if failed > 0 {
		return deleted, fmt.Errorf("invalidate cache: %d of %d keys not deleted", failed, len(keys))
	}
	return deleted, nil
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *Cache) get(ctx context.Context, key string) ([]string, bool) {
	if c.local != nil {
		if ids, ok := c.local.Get(key); ok {
			return ids, true
		}
	}
	if c.store == nil {
		return nil, false
	}

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached search", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		c.logger.Warn("Failed to parse cached search", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if c.local != nil {
		c.local.Add(key, ids)
	}
	return ids, true
}

func (c *Cache) put(ctx context.Context, key string, ids []string) {
	if ids == nil {
		ids = []string{}
	}
	if c.local != nil {
		c.local.Add(key, ids)
	}
	if c.store == nil {
		return
	}

	data, err := json.Marshal(ids)
	if err != nil {
		c.logger.Warn("Failed to encode search for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache search", zap.String("key", key), zap.Error(err))
	}
}

// truncate returns a copy so callers cannot alter cached slices.
func truncate(ids []string, limit int) []string {
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
