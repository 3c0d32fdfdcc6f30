// Package handler はchartフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock_chart/internal/api"
	"stock_chart/internal/feature/chart/domain/entity"
	"stock_chart/internal/feature/chart/domain/indicator"
	"stock_chart/internal/feature/chart/transport/http/dto"
	"stock_chart/internal/feature/chart/usecase"
)

const dateLayout = "2006-01-02"

// ChartUsecase builds a chart for one symbol.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type ChartUsecase interface {
	GetChart(ctx context.Context, symbol string, lookback entity.Lookback, cfg entity.IndicatorConfig) (usecase.Chart, error)
}

// ChartHandler serves chart data to the browser dashboard.
type ChartHandler struct {
	uc       ChartUsecase
	defaults entity.IndicatorConfig
}

// NewChartHandler creates a ChartHandler. defaults fill any toggle or period
// missing from the query string.
func NewChartHandler(uc ChartUsecase, defaults entity.IndicatorConfig) *ChartHandler {
	return &ChartHandler{uc: uc, defaults: defaults}
}

// chartQuery mirrors the dashboard's sidebar. Pointer fields tell "absent" from "false"/"0".
type chartQuery struct {
	Lookback     string `form:"lookback"`
	Trend1       *bool  `form:"trend1"`
	Trend1Period *int   `form:"trend1_period"`
	Trend2       *bool  `form:"trend2"`
	Trend2Period *int   `form:"trend2_period"`
	Bands        *bool  `form:"bands"`
	Oscillator   *bool  `form:"oscillator"`
	Signals      *bool  `form:"signals"`
}

func (q chartQuery) config(defaults entity.IndicatorConfig) entity.IndicatorConfig {
	cfg := defaults
	setBool(&cfg.Trend1Enabled, q.Trend1)
	setInt(&cfg.Trend1Period, q.Trend1Period)
	setBool(&cfg.Trend2Enabled, q.Trend2)
	setInt(&cfg.Trend2Period, q.Trend2Period)
	setBool(&cfg.BandsEnabled, q.Bands)
	setBool(&cfg.OscillatorEnabled, q.Oscillator)
	setBool(&cfg.SignalsVisible, q.Signals)
	return cfg
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// GetChart は銘柄コードとインジケーター設定を受け取り、チャートデータをJSONで返します。
//
// エンドポイント例:
// GET /charts/:symbol?lookback=6mo&trend1=true&trend1_period=9&trend2_period=21&bands=true&signals=true
func (h *ChartHandler) GetChart(c *gin.Context) {
	var q chartQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid query: " + err.Error()})
		return
	}
	lookback, err := entity.ParseLookback(q.Lookback)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	chart, err := h.uc.GetChart(c.Request.Context(), c.Param("symbol"), lookback, q.config(h.defaults))
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			slog.Error("chart request failed", "symbol", c.Param("symbol"), "lookback", lookback, "error", err)
		}
		c.JSON(status, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, toResponse(chart))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrInvalidLookback):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func toResponse(chart usecase.Chart) dto.ChartResponse {
	bars := make([]dto.BarResponse, 0, chart.Series.Len())
	for _, b := range chart.Series.Bars {
		bars = append(bars, dto.BarResponse{
			Time:   b.Time.UTC().Format(dateLayout),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}

	all := chart.Result.Series()
	series := make([]dto.SeriesResponse, 0, len(all))
	for _, ds := range all {
		label, panel := describe(ds.Name, chart.Config)
		values := ds.Points
		if values == nil {
			values = []entity.Point{}
		}
		series = append(series, dto.SeriesResponse{
			Name:    ds.Name,
			Label:   label,
			Panel:   panel,
			Enabled: ds.Enabled,
			Values:  values,
		})
	}

	signals := make([]dto.SignalResponse, 0, len(chart.Result.Signals))
	for _, ev := range chart.Result.Signals {
		signals = append(signals, dto.SignalResponse{
			Time:        ev.Time.UTC().Format(dateLayout),
			Index:       ev.Index,
			Kind:        string(ev.Kind),
			Price:       ev.ReferencePrice,
			MarkerPrice: ev.MarkerPrice,
			Visible:     ev.Visible,
		})
	}

	return dto.ChartResponse{
		Symbol:   chart.Series.Symbol,
		Lookback: string(chart.Series.Lookback),
		Bars:     bars,
		Series:   series,
		Signals:  signals,
	}
}

// describe returns the legend label and panel for a derived series.
func describe(name string, cfg entity.IndicatorConfig) (string, string) {
	switch name {
	case entity.SeriesTrend1:
		return fmt.Sprintf("EMA %d", cfg.Trend1Period), dto.PanelPrice
	case entity.SeriesTrend2:
		return fmt.Sprintf("EMA %d", cfg.Trend2Period), dto.PanelPrice
	case entity.SeriesBandCenter:
		return "BB Middle", dto.PanelPrice
	case entity.SeriesBandUpper:
		return "BB Upper", dto.PanelPrice
	case entity.SeriesBandLower:
		return "BB Lower", dto.PanelPrice
	case entity.SeriesOscillator:
		return fmt.Sprintf("RSI %d", indicator.OscillatorWindow), dto.PanelOscillator
	default:
		return name, dto.PanelPrice
	}
}
