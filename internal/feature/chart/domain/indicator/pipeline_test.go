package indicator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_chart/internal/feature/chart/domain/entity"
	"stock_chart/internal/feature/chart/domain/indicator"
)

func TestCompute_Deterministic(t *testing.T) {
	t.Parallel()

	series := seriesOf(wave(150)...)
	cfg := entity.DefaultIndicatorConfig()
	cfg.SignalsVisible = true

	first, err := indicator.Compute(series, cfg)
	require.NoError(t, err)
	second, err := indicator.Compute(series, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.Signals, "the wave should produce at least one crossing")
}

func TestCompute_TagsAndShapes(t *testing.T) {
	t.Parallel()

	series := seriesOf(wave(40)...)
	cfg := entity.IndicatorConfig{
		Trend1Enabled:     true,
		Trend1Period:      5,
		Trend2Enabled:     false,
		Trend2Period:      13,
		BandsEnabled:      true,
		OscillatorEnabled: false,
		SignalsVisible:    false,
	}

	res, err := indicator.Compute(series, cfg)
	require.NoError(t, err)

	all := res.Series()
	require.Len(t, all, 6)
	wantNames := []string{
		entity.SeriesTrend1, entity.SeriesTrend2,
		entity.SeriesBandCenter, entity.SeriesBandUpper, entity.SeriesBandLower,
		entity.SeriesOscillator,
	}
	wantEnabled := []bool{true, false, true, true, true, false}
	for i, ds := range all {
		assert.Equal(t, wantNames[i], ds.Name)
		assert.Equal(t, wantEnabled[i], ds.Enabled, ds.Name)
		assert.Equal(t, series.Len(), ds.Len(), ds.Name)
	}

	// disabled lines are still computed so signals exist regardless of the toggles
	assert.True(t, res.Trend2.At(0).Defined)
	for _, ev := range res.Signals {
		assert.False(t, ev.Visible)
	}
}

func TestCompute_ShortSeries(t *testing.T) {
	t.Parallel()

	res, err := indicator.Compute(seriesOf(wave(10)...), entity.DefaultIndicatorConfig())
	require.NoError(t, err)

	assert.Empty(t, res.BandCenter.Points)
	assert.Empty(t, res.BandUpper.Points)
	assert.Empty(t, res.BandLower.Points)
	assert.Len(t, res.Oscillator.Points, 10)
	for _, p := range res.Oscillator.Points {
		assert.False(t, p.Defined)
	}
	assert.Len(t, res.Trend1.Points, 10)
}

func TestCompute_EmptySeries(t *testing.T) {
	t.Parallel()

	res, err := indicator.Compute(entity.Series{Symbol: "EMPTY"}, entity.DefaultIndicatorConfig())
	require.NoError(t, err)
	for _, ds := range res.Series() {
		assert.Empty(t, ds.Points, ds.Name)
	}
	assert.Empty(t, res.Signals)
}

func TestCompute_Rejects(t *testing.T) {
	t.Parallel()

	valid := seriesOf(1, 2, 3)
	unordered := seriesOf(1, 2, 3)
	unordered.Bars[2].Time = unordered.Bars[0].Time
	inverted := seriesOf(1, 2, 3)
	inverted.Bars[1].Low, inverted.Bars[1].High = inverted.Bars[1].High, inverted.Bars[1].Low

	withPeriods := func(p1, p2 int) entity.IndicatorConfig {
		cfg := entity.DefaultIndicatorConfig()
		cfg.Trend1Period = p1
		cfg.Trend2Period = p2
		return cfg
	}

	tests := []struct {
		name    string
		series  entity.Series
		cfg     entity.IndicatorConfig
		wantErr error
	}{
		{"trend1 period zero", valid, withPeriods(0, 21), entity.ErrInvalidParameter},
		{"trend2 period negative", valid, withPeriods(9, -3), entity.ErrInvalidParameter},
		{"disabled trend still validated", valid, func() entity.IndicatorConfig {
			cfg := withPeriods(9, 0)
			cfg.Trend2Enabled = false
			return cfg
		}(), entity.ErrInvalidParameter},
		{"parameter checked before input", unordered, withPeriods(0, 21), entity.ErrInvalidParameter},
		{"duplicate timestamps", unordered, withPeriods(9, 21), entity.ErrInvalidInput},
		{"low above high", inverted, withPeriods(9, 21), entity.ErrInvalidInput},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := indicator.Compute(tt.series, tt.cfg)
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
			assert.Equal(t, indicator.Result{}, res)
		})
	}
}
