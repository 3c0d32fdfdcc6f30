package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_chart/internal/feature/chart/domain/entity"
	"stock_chart/internal/feature/chart/domain/indicator"
	"stock_chart/internal/feature/chart/transport/handler"
	"stock_chart/internal/feature/chart/transport/http/dto"
	"stock_chart/internal/feature/chart/usecase"
)

// mockChartUsecase はChartUsecaseインターフェースのモック実装です。
type mockChartUsecase struct {
	GetChartFunc func(ctx context.Context, symbol string, lookback entity.Lookback, cfg entity.IndicatorConfig) (usecase.Chart, error)
}

func (m *mockChartUsecase) GetChart(ctx context.Context, symbol string, lookback entity.Lookback, cfg entity.IndicatorConfig) (usecase.Chart, error) {
	return m.GetChartFunc(ctx, symbol, lookback, cfg)
}

func newRouter(uc handler.ChartUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewChartHandler(uc, entity.DefaultIndicatorConfig())
	r := gin.New()
	r.GET("/charts/:symbol", h.GetChart)
	return r
}

func serve(r *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestChartHandler_QueryToConfig(t *testing.T) {
	tests := []struct {
		name             string
		url              string
		expectedSymbol   string
		expectedLookback entity.Lookback
		expectedConfig   entity.IndicatorConfig
	}{
		{
			name:             "defaults when query is empty",
			url:              "/charts/aapl",
			expectedSymbol:   "aapl",
			expectedLookback: entity.Lookback6M,
			expectedConfig:   entity.DefaultIndicatorConfig(),
		},
		{
			name:             "every toggle overridden",
			url:              "/charts/BTC-USD?lookback=max&trend1=false&trend1_period=5&trend2=0&trend2_period=50&bands=true&oscillator=false&signals=1",
			expectedSymbol:   "BTC-USD",
			expectedLookback: entity.LookbackMax,
			expectedConfig: entity.IndicatorConfig{
				Trend1Enabled:     false,
				Trend1Period:      5,
				Trend2Enabled:     false,
				Trend2Period:      50,
				BandsEnabled:      true,
				OscillatorEnabled: false,
				SignalsVisible:    true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			r := newRouter(&mockChartUsecase{
				GetChartFunc: func(ctx context.Context, symbol string, lookback entity.Lookback, cfg entity.IndicatorConfig) (usecase.Chart, error) {
					called = true
					assert.Equal(t, tt.expectedSymbol, symbol)
					assert.Equal(t, tt.expectedLookback, lookback)
					assert.Equal(t, tt.expectedConfig, cfg)
					return usecase.Chart{Series: entity.Series{Symbol: symbol, Lookback: lookback}, Config: cfg}, nil
				},
			})

			w := serve(r, tt.url)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, called)
		})
	}
}

func TestChartHandler_Errors(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		ucErr          error
		expectedStatus int
	}{
		{"malformed boolean", "/charts/AAPL?bands=maybe", nil, http.StatusBadRequest},
		{"malformed period", "/charts/AAPL?trend1_period=nine", nil, http.StatusBadRequest},
		{"unknown lookback", "/charts/AAPL?lookback=5d", nil, http.StatusBadRequest},
		{"invalid parameter", "/charts/AAPL?trend1_period=0", entity.ErrInvalidParameter, http.StatusBadRequest},
		{"not found", "/charts/NOPE", fmt.Errorf("load NOPE: %w", entity.ErrNotFound), http.StatusNotFound},
		{"invalid input", "/charts/AAPL", entity.ErrInvalidInput, http.StatusUnprocessableEntity},
		{"unavailable", "/charts/AAPL", fmt.Errorf("yahoo: %w", entity.ErrUnavailable), http.StatusBadGateway},
		{"unexpected", "/charts/AAPL", errors.New("boom"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&mockChartUsecase{
				GetChartFunc: func(ctx context.Context, symbol string, lookback entity.Lookback, cfg entity.IndicatorConfig) (usecase.Chart, error) {
					if tt.ucErr == nil {
						t.Fatal("usecase should not be called")
					}
					return usecase.Chart{}, tt.ucErr
				},
			})

			w := serve(r, tt.url)
			assert.Equal(t, tt.expectedStatus, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestChartHandler_EmptySeries(t *testing.T) {
	r := newRouter(&mockChartUsecase{
		GetChartFunc: func(ctx context.Context, symbol string, lookback entity.Lookback, cfg entity.IndicatorConfig) (usecase.Chart, error) {
			series := entity.Series{Symbol: "EMPTY", Lookback: lookback}
			res, err := indicator.Compute(series, cfg)
			return usecase.Chart{Series: series, Config: cfg, Result: res}, err
		},
	})

	w := serve(r, "/charts/EMPTY?lookback=3mo")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"symbol": "EMPTY",
		"lookback": "3mo",
		"bars": [],
		"series": [
			{"name": "trend1", "label": "EMA 9", "panel": "price", "enabled": true, "values": []},
			{"name": "trend2", "label": "EMA 21", "panel": "price", "enabled": true, "values": []},
			{"name": "band-center", "label": "BB Middle", "panel": "price", "enabled": false, "values": []},
			{"name": "band-upper", "label": "BB Upper", "panel": "price", "enabled": false, "values": []},
			{"name": "band-lower", "label": "BB Lower", "panel": "price", "enabled": false, "values": []},
			{"name": "oscillator", "label": "RSI 14", "panel": "oscillator", "enabled": true, "values": []}
		],
		"signals": []
	}`, w.Body.String())
}

func TestChartHandler_Body(t *testing.T) {
	t0 := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	series := entity.Series{
		Symbol:   "THYAO.IS",
		Lookback: entity.Lookback6M,
		Bars: []entity.Bar{
			{Time: t0, Open: 10, High: 11, Low: 9, Close: 10, Volume: 100},
			{Time: t0.AddDate(0, 0, 1), Open: 12, High: 13, Low: 11, Close: 12, Volume: 200},
		},
	}
	cfg := entity.DefaultIndicatorConfig()
	cfg.SignalsVisible = true
	res := indicator.Result{
		Trend1:     entity.DerivedSeries{Name: entity.SeriesTrend1, Enabled: true, Points: []entity.Point{entity.Defined(1), entity.Defined(3)}},
		Trend2:     entity.DerivedSeries{Name: entity.SeriesTrend2, Enabled: true, Points: []entity.Point{entity.Defined(2), entity.Defined(2)}},
		Oscillator: entity.DerivedSeries{Name: entity.SeriesOscillator, Enabled: true, Points: []entity.Point{entity.Undefined, entity.Undefined}},
		Signals: []entity.SignalEvent{
			{Time: t0.AddDate(0, 0, 1), Index: 1, Kind: entity.SignalBuy, ReferencePrice: 12, MarkerPrice: 10.89, Visible: true},
		},
	}

	r := newRouter(&mockChartUsecase{
		GetChartFunc: func(ctx context.Context, symbol string, lookback entity.Lookback, c entity.IndicatorConfig) (usecase.Chart, error) {
			return usecase.Chart{Series: series, Config: cfg, Result: res}, nil
		},
	})

	w := serve(r, "/charts/THYAO.IS?signals=true")
	require.Equal(t, http.StatusOK, w.Code)

	var got dto.ChartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))

	assert.Equal(t, "THYAO.IS", got.Symbol)
	require.Len(t, got.Bars, 2)
	assert.Equal(t, dto.BarResponse{Time: "2023-01-03", Open: 12, High: 13, Low: 11, Close: 12, Volume: 200}, got.Bars[1])

	require.Len(t, got.Series, 6)
	assert.Equal(t, []entity.Point{entity.Defined(1), entity.Defined(3)}, got.Series[0].Values)
	assert.Equal(t, []entity.Point{entity.Undefined, entity.Undefined}, got.Series[5].Values)
	assert.Equal(t, []entity.Point{}, got.Series[2].Values)

	require.Len(t, got.Signals, 1)
	assert.Equal(t, dto.SignalResponse{Time: "2023-01-03", Index: 1, Kind: "BUY", Price: 12, MarkerPrice: 10.89, Visible: true}, got.Signals[0])
}
