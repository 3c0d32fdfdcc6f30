package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"stock_chart/internal/app/config"
	"stock_chart/internal/app/di"
	chartadapters "stock_chart/internal/feature/chart/adapters"
	"stock_chart/internal/feature/chart/domain/entity"
	chartusecase "stock_chart/internal/feature/chart/usecase"
	watchlistadapters "stock_chart/internal/feature/watchlist/adapters"
	watchlistusecase "stock_chart/internal/feature/watchlist/usecase"
	"stock_chart/internal/platform/cache"
	"stock_chart/internal/platform/logger"
	"stock_chart/internal/platform/metrics"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	envFile := flag.String("env", ".env", "path to the dotenv file")
	schedule := flag.String("schedule", "", "cron spec (with seconds) to run repeatedly; overrides ingest.schedule")
	timeout := flag.Duration("timeout", 30*time.Minute, "maximum duration of one run")
	flag.Parse()

	if err := run(*configPath, *envFile, *schedule, *timeout); err != nil {
		slog.Error("ingest failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, envFile, schedule string, timeout time.Duration) error {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return err
	}
	if schedule != "" {
		cfg.Ingest.Schedule = schedule
	}
	if _, err := logger.Setup(os.Stdout, logger.Config{Format: cfg.Log.Format, Level: cfg.Log.Level}); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := di.OpenDB(ctx, cfg)
	if err != nil {
		return err
	}
	rdb := di.NewRedis(ctx, cfg)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}
	m := metrics.New()

	market, err := di.NewGuardedMarket(cfg, cfg.Ingest.Source, gormDB, m)
	if err != nil {
		return err
	}
	var bars chartusecase.BarRepository = chartadapters.NewBarStore(gormDB, nil)
	if rdb != nil {
		// 書き込んだ銘柄のチャートキャッシュを破棄する
		chartCache := cache.NewCachingSeriesLoader(rdb, nil, market, cfg.Redis.Namespace)
		bars = cache.NewInvalidatingRepository(bars, chartCache)
	}
	lookback, _ := entity.ParseLookback(cfg.Ingest.Lookback) // validated above

	uc := chartusecase.NewIngestUsecase(market, bars, di.NewIngestRateLimiter(cfg), lookback)
	watchlist := watchlistusecase.NewWatchlistUsecase(watchlistadapters.NewSymbolRepository(gormDB))

	once := func() error {
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		symbols, err := watchlist.ActiveCodes(runCtx)
		if err != nil {
			return err
		}
		res, err := uc.IngestAll(runCtx, symbols)
		m.RecordIngest(res.Bars, len(res.Failed))
		if err != nil {
			return err
		}
		slog.Info("ingest ok", "symbols", res.Symbols, "bars", res.Bars, "failed", res.Failed)
		return nil
	}

	if cfg.Ingest.Schedule == "" {
		return once()
	}

	c := cron.New(cron.WithParser(cron.NewParser(config.CronSpec)), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(cfg.Ingest.Schedule, func() {
		if err := once(); err != nil {
			slog.Error("scheduled ingest failed", "error", err)
		}
	}); err != nil {
		return err
	}
	slog.Info("ingest scheduled", "schedule", cfg.Ingest.Schedule, "source", cfg.Ingest.Source)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
