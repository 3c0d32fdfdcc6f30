package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stock_chart/internal/feature/chart/domain/entity"
	"stock_chart/internal/feature/chart/usecase"
	"stock_chart/internal/platform/externalapi/twelvedata/dto"
)

const dailyInterval = "1day"

// TwelveDataMarket はTwelve Data外部APIから日足データを取得するSeriesLoader実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがSeriesLoaderを実装していることをコンパイル時に検証します。
var _ usecase.SeriesLoader = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// Load はlookbackに相当する本数の日足を取得し、昇順に並べ替えて返します。
func (t *TwelveDataMarket) Load(ctx context.Context, symbol string, lookback entity.Lookback) (entity.Series, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", dailyInterval)
	q.Set("outputsize", strconv.Itoa(lookback.TradingDays()))
	q.Set("apikey", t.cfg.APIKey)

	u := fmt.Sprintf("%s/time_series?%s", strings.TrimRight(t.cfg.BaseURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.Series{}, err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return entity.Series{}, fmt.Errorf("%w: twelvedata: %w", entity.ErrUnavailable, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode == http.StatusNotFound {
		return entity.Series{}, fmt.Errorf("%w: twelvedata: %s", entity.ErrNotFound, symbol)
	}
	if res.StatusCode >= 400 {
		return entity.Series{}, fmt.Errorf("%w: twelvedata http %d", entity.ErrUnavailable, res.StatusCode)
	}

	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return entity.Series{}, fmt.Errorf("%w: twelvedata: decode: %v", entity.ErrUnavailable, err)
	}
	if body.Status == "error" {
		if isSymbolNotFound(body) {
			return entity.Series{}, fmt.Errorf("%w: twelvedata: %s", entity.ErrNotFound, body.Message)
		}
		return entity.Series{}, fmt.Errorf("%w: twelvedata: %s", entity.ErrUnavailable, body.Message)
	}

	bars := make([]entity.Bar, 0, len(body.Values))
	for _, v := range body.Values {
		b, err := toBar(v)
		if err != nil {
			return entity.Series{}, fmt.Errorf("%w: twelvedata: %v", entity.ErrUnavailable, err)
		}
		bars = append(bars, b)
	}
	// APIは新しい順に返すため昇順に並べ替える
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	return entity.Series{Symbol: symbol, Lookback: lookback, Bars: bars}, nil
}

func isSymbolNotFound(body dto.TimeSeriesResponse) bool {
	if body.Code != http.StatusBadRequest && body.Code != http.StatusNotFound {
		return false
	}
	return strings.Contains(strings.ToLower(body.Message), "not found")
}

func toBar(v dto.TimeSeriesValue) (entity.Bar, error) {
	tm, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
	if err != nil {
		tm, err = time.Parse("2006-01-02", v.Datetime)
		if err != nil {
			return entity.Bar{}, fmt.Errorf("parse time %q: %w", v.Datetime, err)
		}
	}

	var px [4]float64
	for i, s := range [...]string{v.Open, v.High, v.Low, v.Close} {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return entity.Bar{}, fmt.Errorf("parse price %q at %s: %w", s, v.Datetime, err)
		}
		px[i] = d.InexactFloat64()
	}

	// FXや指数には出来高がない
	var vol int64
	if v.Volume != "" {
		d, err := decimal.NewFromString(v.Volume)
		if err != nil {
			return entity.Bar{}, fmt.Errorf("parse volume %q: %w", v.Volume, err)
		}
		vol = d.IntPart()
	}

	return entity.Bar{Time: tm, Open: px[0], High: px[1], Low: px[2], Close: px[3], Volume: vol}, nil
}
