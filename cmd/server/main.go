package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"stock_chart/internal/app/config"
	"stock_chart/internal/app/di"
	"stock_chart/internal/app/router"
	charthandler "stock_chart/internal/feature/chart/transport/handler"
	chartusecase "stock_chart/internal/feature/chart/usecase"
	watchlistadapters "stock_chart/internal/feature/watchlist/adapters"
	watchlisthandler "stock_chart/internal/feature/watchlist/transport/handler"
	watchlistusecase "stock_chart/internal/feature/watchlist/usecase"
	"stock_chart/internal/platform/db"
	"stock_chart/internal/platform/http/handler"
	"stock_chart/internal/platform/logger"
	"stock_chart/internal/platform/metrics"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	envFile := flag.String("env", ".env", "path to the dotenv file")
	flag.Parse()

	if err := run(*configPath, *envFile); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath, envFile string) error {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return err
	}
	if _, err := logger.Setup(os.Stdout, logger.Config{Format: cfg.Log.Format, Level: cfg.Log.Level}); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	gormDB, err := di.OpenDB(ctx, cfg)
	if err != nil {
		return err
	}

	// Redis
	rdb := di.NewRedis(ctx, cfg)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	m := metrics.New()

	// Repository
	loader, err := di.NewChartLoader(cfg, gormDB, rdb, m)
	if err != nil {
		return err
	}
	symbolRepo := watchlistadapters.NewSymbolRepository(gormDB)

	// Usecase
	chartUC := chartusecase.NewChartUsecase(loader, m)
	watchlistUC := watchlistusecase.NewWatchlistUsecase(symbolRepo)

	// Handler
	chartH := charthandler.NewChartHandler(chartUC, cfg.IndicatorDefaults())
	symbolH := watchlisthandler.NewSymbolHandler(watchlistUC)

	checks := []handler.Check{{Name: "db", Fn: func(ctx context.Context) error { return db.Ping(ctx, gormDB) }}}
	if rdb != nil {
		checks = append(checks, handler.Check{Name: "redis", Fn: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }})
	}

	// ルータ生成
	r := router.NewRouter(router.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
		Metrics:        m,
		ReadyChecks:    checks,
	}, chartH, symbolH)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Server.Addr, "source", cfg.Source)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
