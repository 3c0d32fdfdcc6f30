package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stock_chart/internal/app/config"
	chartadapters "stock_chart/internal/feature/chart/adapters"
	chartentity "stock_chart/internal/feature/chart/domain/entity"
	watchlistadapters "stock_chart/internal/feature/watchlist/adapters"
	watchlistentity "stock_chart/internal/feature/watchlist/domain/entity"
	"stock_chart/internal/platform/db"
	infraredis "stock_chart/internal/platform/redis"
)

// OpenDB connects to the configured database, migrates the bar and watchlist
// tables and seeds the watchlist from the configuration.
func OpenDB(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	gormDB, err := db.Open(ctx, cfg.DB(), &chartadapters.BarModel{}, &watchlistentity.Symbol{})
	if err != nil {
		return nil, err
	}
	if err := SeedWatchlist(ctx, gormDB, cfg.Watchlist); err != nil {
		return nil, err
	}
	return gormDB, nil
}

// SeedWatchlist upserts entries in the order given; the position becomes the sort key.
func SeedWatchlist(ctx context.Context, gormDB *gorm.DB, entries []config.WatchlistEntry) error {
	if len(entries) == 0 {
		return nil
	}
	symbols := make([]watchlistentity.Symbol, len(entries))
	for i, e := range entries {
		symbols[i] = watchlistentity.Symbol{
			Code:     chartentity.NormalizeSymbol(e.Code),
			Name:     e.Name,
			Market:   e.Market,
			IsActive: true,
			SortKey:  i,
		}
	}
	if err := watchlistadapters.NewSymbolRepository(gormDB).Seed(ctx, symbols); err != nil {
		return fmt.Errorf("seed watchlist: %w", err)
	}
	slog.Info("watchlist seeded", "symbols", len(symbols))
	return nil
}

// NewRedis connects to Redis. A connection failure is logged and the service runs without a cache.
func NewRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	rdb, err := infraredis.NewRedisClient(ctx, infraredis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		slog.Warn("Redis unavailable, running without cache", "addr", cfg.Redis.Addr, "error", err)
		return nil
	}
	return rdb
}
