// Package dto defines the JSON bodies of the chart HTTP API.
package dto

import "stock_chart/internal/feature/chart/domain/entity"

// Panels a renderer may place a series on.
const (
	PanelPrice      = "price"
	PanelOscillator = "oscillator"
)

// ChartResponse is everything a renderer needs to draw one chart.
type ChartResponse struct {
	Symbol   string           `json:"symbol"`
	Lookback string           `json:"lookback"`
	Bars     []BarResponse    `json:"bars"`
	Series   []SeriesResponse `json:"series"`
	Signals  []SignalResponse `json:"signals"`
}

// BarResponse はロウソク足1本分のデータです。
type BarResponse struct {
	Time   string  `json:"time"`   // 日付
	Open   float64 `json:"open"`   // 始値
	High   float64 `json:"high"`   // 高値
	Low    float64 `json:"low"`    // 安値
	Close  float64 `json:"close"`  // 終値
	Volume int64   `json:"volume"` // 出来高
}

// SeriesResponse is one derived line. Values are aligned with Bars; null marks warm-up gaps.
type SeriesResponse struct {
	Name    string         `json:"name"`
	Label   string         `json:"label"`
	Panel   string         `json:"panel"`
	Enabled bool           `json:"enabled"`
	Values  []entity.Point `json:"values"`
}

// SignalResponse is one crossover marker.
type SignalResponse struct {
	Time        string  `json:"time"`
	Index       int     `json:"index"`
	Kind        string  `json:"kind"`
	Price       float64 `json:"price"`
	MarkerPrice float64 `json:"marker_price"`
	Visible     bool    `json:"visible"`
}
