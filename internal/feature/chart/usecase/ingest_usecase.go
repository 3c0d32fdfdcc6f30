package usecase

import (
	"context"
	"log/slog"

	"stock_chart/internal/feature/chart/domain/entity"
)

// BarRepository persists bars fetched from the market data provider.
type BarRepository interface {
	UpsertBatch(ctx context.Context, symbol string, bars []entity.Bar) error
}

// RateLimiter paces calls to the upstream provider.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// IngestResult summarizes one ingest run.
type IngestResult struct {
	Symbols int
	Failed  []string
	Bars    int
}

// IngestUsecase copies provider history into the bar store so the chart
// endpoint can be served without calling the provider on every request.
type IngestUsecase struct {
	market      SeriesLoader
	bars        BarRepository
	rateLimiter RateLimiter
	lookback    entity.Lookback
}

// NewIngestUsecase creates an IngestUsecase that fetches lookback worth of history per symbol.
// An empty lookback means the full history.
func NewIngestUsecase(market SeriesLoader, bars BarRepository, rateLimiter RateLimiter, lookback entity.Lookback) *IngestUsecase {
	if lookback == "" {
		lookback = entity.LookbackMax
	}
	return &IngestUsecase{market: market, bars: bars, rateLimiter: rateLimiter, lookback: lookback}
}

func (iu *IngestUsecase) ingestOne(ctx context.Context, symbol string) (int, error) {
	series, err := iu.market.Load(ctx, symbol, iu.lookback)
	if err != nil {
		return 0, err
	}
	if err := series.Validate(); err != nil {
		return 0, err
	}
	if err := iu.bars.UpsertBatch(ctx, symbol, series.Bars); err != nil {
		return 0, err
	}
	return series.Len(), nil
}

// IngestAll fetches and stores every symbol, waiting on the rate limiter between calls.
// A failing symbol is logged and skipped; only context cancellation aborts the run.
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string) (IngestResult, error) {
	res := IngestResult{Symbols: len(symbols)}
	for _, s := range symbols {
		s = entity.NormalizeSymbol(s)
		if err := iu.rateLimiter.Wait(ctx); err != nil {
			return res, err
		}
		n, err := iu.ingestOne(ctx, s)
		if err != nil {
			// 1銘柄の失敗で全体を止めない
			slog.Error("failed to ingest bars", "symbol", s, "lookback", iu.lookback, "error", err)
			res.Failed = append(res.Failed, s)
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			continue
		}
		res.Bars += n
		slog.Info("ingested bars", "symbol", s, "bars", n)
	}
	return res, nil
}
