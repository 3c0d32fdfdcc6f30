// Package cache provides caching decorators for the chart loaders.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"stock_chart/internal/feature/chart/domain/entity"
	"stock_chart/internal/feature/chart/usecase"
)

// Recorder receives cache hit/miss outcomes. Implemented by the metrics package.
type Recorder interface {
	RecordCache(namespace string, hit bool)
}

// CachingSeriesLoader decorates a SeriesLoader with Redis caching.
// Concurrent misses for the same key share one upstream call.
type CachingSeriesLoader struct {
	inner     usecase.SeriesLoader
	rdb       *redis.Client
	ttl       func() time.Duration
	namespace string
	group     singleflight.Group
	recorder  Recorder
}

var _ usecase.SeriesLoader = (*CachingSeriesLoader)(nil)

// NewCachingSeriesLoader decorates a SeriesLoader with Redis caching.
// ttl is evaluated on every write; nil means a fixed 5 minutes.
// If namespace is empty, it uses "chart". A nil rdb disables caching but keeps coalescing.
func NewCachingSeriesLoader(rdb *redis.Client, ttl func() time.Duration, inner usecase.SeriesLoader, namespace string) *CachingSeriesLoader {
	if ttl == nil {
		ttl = func() time.Duration { return 5 * time.Minute }
	}
	if namespace == "" {
		namespace = "chart"
	}
	return &CachingSeriesLoader{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// WithRecorder attaches a hit/miss recorder and returns the loader.
func (c *CachingSeriesLoader) WithRecorder(r Recorder) *CachingSeriesLoader {
	c.recorder = r
	return c
}

// Load returns the cached series for (symbol, lookback) or loads and caches it.
// Errors are never cached. The upstream load is shared by concurrent callers and
// bounded by the inner loader's own timeout, not by any single caller's ctx.
func (c *CachingSeriesLoader) Load(ctx context.Context, symbol string, lookback entity.Lookback) (entity.Series, error) {
	key := c.cacheKey(symbol, lookback)

	if c.rdb != nil {
		if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
			var out entity.Series
			if err := json.Unmarshal(b, &out); err == nil {
				c.record(true)
				return out, nil
			}
			// 壊れたキャッシュは削除する
			slog.Warn("dropping corrupt cache entry", "key", key)
			_ = c.rdb.Del(ctx, key).Err()
		}
		c.record(false)
	}

	// 共有ロードは最初の呼び出し元のキャンセルを引き継がない。各呼び出し元は自分のctxで待つ
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		out, err := c.inner.Load(shared, symbol, lookback)
		if err != nil {
			return entity.Series{}, err
		}
		if c.rdb != nil {
			if b, err := json.Marshal(out); err == nil {
				if err := c.rdb.Set(shared, key, b, c.ttl()).Err(); err != nil {
					slog.Warn("failed to write cache", "key", key, "error", err)
				}
			}
		}
		return out, nil
	})

	select {
	case <-ctx.Done():
		return entity.Series{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return entity.Series{}, res.Err
		}
		return res.Val.(entity.Series), nil
	}
}

// Invalidate removes every cached lookback for symbol.
func (c *CachingSeriesLoader) Invalidate(ctx context.Context, symbol string) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.cacheKeyPrefix(symbol)+"*")
}

func (c *CachingSeriesLoader) record(hit bool) {
	if c.recorder != nil {
		c.recorder.RecordCache(c.namespace, hit)
	}
}

// cacheKey generates a cache key for a specific query.
func (c *CachingSeriesLoader) cacheKey(symbol string, lookback entity.Lookback) string {
	return fmt.Sprintf("%s:%s:%s", c.namespace, safe(entity.NormalizeSymbol(symbol)), safe(string(lookback)))
}

// cacheKeyPrefix generates a prefix for invalidating related cache entries.
func (c *CachingSeriesLoader) cacheKeyPrefix(symbol string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(entity.NormalizeSymbol(symbol)))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingSeriesLoader) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// InvalidatingRepository writes through to a BarRepository and then drops the
// cached windows of the symbol it just wrote.
type InvalidatingRepository struct {
	inner usecase.BarRepository
	cache *CachingSeriesLoader
}

var _ usecase.BarRepository = (*InvalidatingRepository)(nil)

// NewInvalidatingRepository wraps inner so writes evict entries from cache.
func NewInvalidatingRepository(inner usecase.BarRepository, cache *CachingSeriesLoader) *InvalidatingRepository {
	return &InvalidatingRepository{inner: inner, cache: cache}
}

func (r *InvalidatingRepository) UpsertBatch(ctx context.Context, symbol string, bars []entity.Bar) error {
	if err := r.inner.UpsertBatch(ctx, symbol, bars); err != nil {
		return err
	}
	if len(bars) == 0 {
		return nil
	}
	// キャッシュ削除の失敗で書き込みを失敗扱いにしない
	if err := r.cache.Invalidate(ctx, symbol); err != nil {
		slog.Warn("failed to invalidate cache", "symbol", symbol, "error", err)
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
