package indicator

import (
	"stock_chart/internal/feature/chart/domain/entity"
)

// Result is everything the pipeline derives from one series and one config.
type Result struct {
	Trend1     entity.DerivedSeries
	Trend2     entity.DerivedSeries
	BandCenter entity.DerivedSeries
	BandUpper  entity.DerivedSeries
	BandLower  entity.DerivedSeries
	Oscillator entity.DerivedSeries
	Signals    []entity.SignalEvent
}

// Series returns the derived series in drawing order.
func (r Result) Series() []entity.DerivedSeries {
	return []entity.DerivedSeries{r.Trend1, r.Trend2, r.BandCenter, r.BandUpper, r.BandLower, r.Oscillator}
}

// Compute validates cfg and series, then derives every series and signal.
//
// All indicators are computed regardless of their enable flags; the flags are
// copied onto the outputs so the renderer can show or hide them without a
// recomputation. The returned slices are freshly allocated on every call.
func Compute(series entity.Series, cfg entity.IndicatorConfig) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := series.Validate(); err != nil {
		return Result{}, err
	}

	fast, err := Trend(series, cfg.Trend1Period)
	if err != nil {
		return Result{}, err
	}
	slow, err := Trend(series, cfg.Trend2Period)
	if err != nil {
		return Result{}, err
	}
	center, upper, lower := Bands(series)

	signals, err := Crossovers(series, fast, slow, cfg.SignalsVisible)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Trend1:     entity.DerivedSeries{Name: entity.SeriesTrend1, Enabled: cfg.Trend1Enabled, Points: fast},
		Trend2:     entity.DerivedSeries{Name: entity.SeriesTrend2, Enabled: cfg.Trend2Enabled, Points: slow},
		BandCenter: entity.DerivedSeries{Name: entity.SeriesBandCenter, Enabled: cfg.BandsEnabled, Points: center},
		BandUpper:  entity.DerivedSeries{Name: entity.SeriesBandUpper, Enabled: cfg.BandsEnabled, Points: upper},
		BandLower:  entity.DerivedSeries{Name: entity.SeriesBandLower, Enabled: cfg.BandsEnabled, Points: lower},
		Oscillator: entity.DerivedSeries{Name: entity.SeriesOscillator, Enabled: cfg.OscillatorEnabled, Points: Oscillator(series)},
		Signals:    signals,
	}, nil
}
