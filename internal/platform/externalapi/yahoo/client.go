package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"stock_chart/internal/feature/chart/domain/entity"
	"stock_chart/internal/feature/chart/usecase"
	"stock_chart/internal/platform/externalapi/yahoo/dto"
)

const defaultUserAgent = "Mozilla/5.0"

// Market loads daily bars from Yahoo Finance.
type Market struct {
	cfg    Config
	client *http.Client
}

var _ usecase.SeriesLoader = (*Market)(nil)

// NewMarket creates a Yahoo Finance loader using client for transport.
func NewMarket(cfg Config, client *http.Client) *Market {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Market{cfg: cfg, client: client}
}

func (m *Market) ticker(symbol string) string {
	if mapped, ok := m.cfg.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// Load fetches the daily bars covering lookback.
// Rows with a null price are skipped. Bars are keyed by exchange-local date, stored as UTC midnight.
func (m *Market) Load(ctx context.Context, symbol string, lookback entity.Lookback) (entity.Series, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		strings.TrimRight(m.cfg.BaseURL, "/"), url.PathEscape(m.ticker(symbol)), url.QueryEscape(string(lookback)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.Series{}, err
	}
	req.Header.Set("User-Agent", m.cfg.UserAgent)

	res, err := m.client.Do(req)
	if err != nil {
		return entity.Series{}, fmt.Errorf("%w: yahoo: %w", entity.ErrUnavailable, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return entity.Series{}, fmt.Errorf("%w: yahoo: read body: %v", entity.ErrUnavailable, err)
	}

	var chart dto.ChartResponse
	decodeErr := json.Unmarshal(body, &chart)

	if e := chart.Chart.Error; decodeErr == nil && e != nil {
		if res.StatusCode == http.StatusNotFound || isNoData(e) {
			return entity.Series{}, fmt.Errorf("%w: yahoo: %s: %s", entity.ErrNotFound, symbol, e.Description)
		}
		return entity.Series{}, fmt.Errorf("%w: yahoo: %s", entity.ErrUnavailable, e.Description)
	}
	if res.StatusCode == http.StatusNotFound {
		return entity.Series{}, fmt.Errorf("%w: yahoo: %s", entity.ErrNotFound, symbol)
	}
	if res.StatusCode != http.StatusOK {
		return entity.Series{}, fmt.Errorf("%w: yahoo: status %d", entity.ErrUnavailable, res.StatusCode)
	}
	if decodeErr != nil {
		return entity.Series{}, fmt.Errorf("%w: yahoo: decode: %v", entity.ErrUnavailable, decodeErr)
	}

	series := entity.Series{Symbol: symbol, Lookback: lookback, Bars: []entity.Bar{}}
	if len(chart.Chart.Result) == 0 {
		return series, nil
	}
	series.Bars = toBars(chart.Chart.Result[0])
	return series, nil
}

func isNoData(e *dto.ChartError) bool {
	return strings.EqualFold(e.Code, "Not Found") ||
		strings.Contains(strings.ToLower(e.Description), "no data found")
}

func toBars(r dto.ChartResult) []entity.Bar {
	bars := make([]entity.Bar, 0, len(r.Timestamp))
	if len(r.Indicators.Quote) == 0 {
		return bars
	}
	q := r.Indicators.Quote[0]
	loc := time.FixedZone("exchange", r.Meta.GMTOffset)

	for i, ts := range r.Timestamp {
		o, h, l, c := at(q.Open, i), at(q.High, i), at(q.Low, i), at(q.Close, i)
		if o == nil || h == nil || l == nil || c == nil {
			continue
		}
		var vol int64
		if v := at(q.Volume, i); v != nil {
			vol = int64(*v)
		}
		local := time.Unix(ts, 0).In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

		b := entity.Bar{Time: day, Open: *o, High: *h, Low: *l, Close: *c, Volume: vol}
		// 場中は当日分が二重に返ることがあるので新しい方で上書きする
		if n := len(bars); n > 0 && bars[n-1].Time.Equal(day) {
			bars[n-1] = b
			continue
		}
		bars = append(bars, b)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars
}

func at(xs []*float64, i int) *float64 {
	if i < len(xs) {
		return xs[i]
	}
	return nil
}
