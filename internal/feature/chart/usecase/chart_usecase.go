// Package usecase implements the chart feature's application logic:
// load a series, run the indicator pipeline, hand the result to the transport layer.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stock_chart/internal/feature/chart/domain/entity"
	"stock_chart/internal/feature/chart/domain/indicator"
)

// SeriesLoader fetches the bar history for a symbol.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SeriesLoader interface {
	// Load returns the bars covering lookback in ascending time order.
	// An unknown symbol yields entity.ErrNotFound and a provider failure entity.ErrUnavailable;
	// a known symbol without bars is a valid, empty series.
	Load(ctx context.Context, symbol string, lookback entity.Lookback) (entity.Series, error)
}

// ComputeObserver receives the pipeline duration for each computed chart.
type ComputeObserver interface {
	ObserveCompute(bars int, d time.Duration)
}

// Chart is the pipeline output together with the inputs that produced it.
type Chart struct {
	Series entity.Series
	Config entity.IndicatorConfig
	Result indicator.Result
}

// ChartUsecase builds charts for the HTTP layer.
type ChartUsecase struct {
	loader   SeriesLoader
	observer ComputeObserver
}

// NewChartUsecase creates a ChartUsecase. observer may be nil.
func NewChartUsecase(loader SeriesLoader, observer ComputeObserver) *ChartUsecase {
	return &ChartUsecase{loader: loader, observer: observer}
}

// GetChart validates the request, loads the series and computes every indicator.
// The config is checked before the loader is called so a bad period never costs a fetch.
func (u *ChartUsecase) GetChart(ctx context.Context, symbol string, lookback entity.Lookback, cfg entity.IndicatorConfig) (Chart, error) {
	symbol = entity.NormalizeSymbol(symbol)
	if symbol == "" {
		return Chart{}, fmt.Errorf("%w: symbol is required", entity.ErrInvalidParameter)
	}
	if err := cfg.Validate(); err != nil {
		return Chart{}, err
	}
	if lookback == "" {
		lookback = entity.DefaultLookback
	}

	series, err := u.loader.Load(ctx, symbol, lookback)
	if err != nil {
		return Chart{}, fmt.Errorf("load %s (%s): %w", symbol, lookback, err)
	}
	if series.Symbol == "" {
		series.Symbol = symbol
	}
	if series.Lookback == "" {
		series.Lookback = lookback
	}

	start := time.Now()
	res, err := indicator.Compute(series, cfg)
	if err != nil {
		slog.Warn("indicator pipeline rejected series", "symbol", symbol, "lookback", lookback, "error", err)
		return Chart{}, err
	}
	if u.observer != nil {
		u.observer.ObserveCompute(series.Len(), time.Since(start))
	}

	slog.Debug("chart computed", "symbol", symbol, "lookback", lookback,
		"bars", series.Len(), "signals", len(res.Signals))
	return Chart{Series: series, Config: cfg, Result: res}, nil
}
