package entity

import "fmt"

// IndicatorConfig holds the per-request indicator toggles and periods.
// It is built once from user input and passed by value to the pipeline.
type IndicatorConfig struct {
	Trend1Enabled     bool
	Trend1Period      int
	Trend2Enabled     bool
	Trend2Period      int
	BandsEnabled      bool
	OscillatorEnabled bool
	SignalsVisible    bool
}

// DefaultIndicatorConfig returns the dashboard's initial settings:
// EMA 9 and EMA 21 shown, bands hidden, RSI shown, signals hidden.
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		Trend1Enabled:     true,
		Trend1Period:      9,
		Trend2Enabled:     true,
		Trend2Period:      21,
		BandsEnabled:      false,
		OscillatorEnabled: true,
		SignalsVisible:    false,
	}
}

// Validate rejects non-positive trend periods. Both periods are checked even when a
// trend is disabled, because crossover signals are always computed from both lines.
func (c IndicatorConfig) Validate() error {
	if c.Trend1Period < 1 {
		return fmt.Errorf("%w: trend1 period must be >= 1, got %d", ErrInvalidParameter, c.Trend1Period)
	}
	if c.Trend2Period < 1 {
		return fmt.Errorf("%w: trend2 period must be >= 1, got %d", ErrInvalidParameter, c.Trend2Period)
	}
	return nil
}
