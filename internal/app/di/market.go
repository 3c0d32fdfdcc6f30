// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stock_chart/internal/app/config"
	"stock_chart/internal/feature/chart/adapters"
	"stock_chart/internal/feature/chart/usecase"
	watchlistadapters "stock_chart/internal/feature/watchlist/adapters"
	"stock_chart/internal/platform/breaker"
	"stock_chart/internal/platform/cache"
	"stock_chart/internal/platform/externalapi/twelvedata"
	"stock_chart/internal/platform/externalapi/yahoo"
	infrahttp "stock_chart/internal/platform/http"
	"stock_chart/internal/platform/metrics"
	"stock_chart/internal/shared/ratelimiter"
)

// NewMarket creates the loader for source. The store source reads the bar table
// through gormDB; the remote sources share one proxy-aware HTTP client.
func NewMarket(cfg *config.Config, source string, gormDB *gorm.DB) (usecase.SeriesLoader, error) {
	switch source {
	case config.SourceStore:
		if gormDB == nil {
			return nil, fmt.Errorf("source %q needs a database", source)
		}
		return adapters.NewBarStore(gormDB, nil).
			WithCatalog(watchlistadapters.NewSymbolRepository(gormDB)), nil
	case config.SourceYahoo, config.SourceTwelveData:
	default:
		return nil, fmt.Errorf("unknown market source %q", source)
	}

	httpClient, err := infrahttp.NewHTTPClient(cfg.HTTP.Timeout, cfg.HTTP.Proxy)
	if err != nil {
		return nil, err
	}
	if source == config.SourceTwelveData {
		return twelvedata.NewTwelveDataMarket(twelvedata.Config{
			APIKey:  cfg.TwelveData.APIKey,
			BaseURL: cfg.TwelveData.BaseURL,
			Timeout: cfg.HTTP.Timeout,
		}, httpClient), nil
	}
	return yahoo.NewMarket(yahoo.Config{
		BaseURL:   cfg.Yahoo.BaseURL,
		UserAgent: cfg.Yahoo.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
		SymbolMap: cfg.Yahoo.SymbolMap,
	}, httpClient), nil
}

// NewGuardedMarket wraps a remote source in a circuit breaker. The store source is returned as is.
func NewGuardedMarket(cfg *config.Config, source string, gormDB *gorm.DB, m *metrics.Metrics) (usecase.SeriesLoader, error) {
	market, err := NewMarket(cfg, source, gormDB)
	if err != nil {
		return nil, err
	}
	if source == config.SourceStore {
		return market, nil
	}
	return breaker.NewLoader(market, breaker.Config{
		Name:        source,
		MaxFailures: cfg.Breaker.MaxFailures,
		OpenTimeout: cfg.Breaker.OpenTimeout,
	}, m), nil
}

// NewChartLoader composes the loader behind the chart endpoint:
// source -> circuit breaker -> Redis cache expiring at the next 08:00.
// The returned cache is also used by the ingest job to evict rewritten symbols.
func NewChartLoader(cfg *config.Config, gormDB *gorm.DB, rdb *redis.Client, m *metrics.Metrics) (*cache.CachingSeriesLoader, error) {
	market, err := NewGuardedMarket(cfg, cfg.Source, gormDB, m)
	if err != nil {
		return nil, err
	}
	return cache.NewCachingSeriesLoader(rdb, cache.UntilNext8AM(cfg.Redis.Zone), market, cfg.Redis.Namespace).
		WithRecorder(m), nil
}

// NewIngestRateLimiter paces the ingest job. Only Twelve Data publishes a quota.
func NewIngestRateLimiter(cfg *config.Config) *ratelimiter.RateLimiter {
	if cfg.Ingest.Source != config.SourceTwelveData {
		return ratelimiter.NewRateLimiter(0, 0)
	}
	return ratelimiter.NewRateLimiter(cfg.TwelveData.RateLimit, cfg.TwelveData.RateInterval)
}
