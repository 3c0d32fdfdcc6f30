// Package entity defines the domain models for the chart feature.
package entity

import (
	"fmt"
	"math"
	"time"
)

// Bar represents one OHLC observation for a symbol.
// Bars are immutable once produced by a loader.
type Bar struct {
	Time   time.Time // Start of the bar period
	Open   float64   // Opening price
	High   float64   // Highest price during the period
	Low    float64   // Lowest price during the period
	Close  float64   // Closing price
	Volume int64     // Trading volume (renderer only, not used by indicators)
}

// Series is an ordered, ascending sequence of bars for one symbol and lookback window.
type Series struct {
	Symbol   string
	Lookback Lookback
	Bars     []Bar
}

// Len returns the number of bars in the series.
func (s Series) Len() int { return len(s.Bars) }

// Closes returns the close prices as a new slice aligned with Bars.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Validate checks the assumptions the indicator pipeline relies on:
// strictly ascending timestamps, finite prices and low <= open,close <= high.
func (s Series) Validate() error {
	for i, b := range s.Bars {
		for _, p := range [...]float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(p) || math.IsInf(p, 0) {
				return fmt.Errorf("%w: bar %d has a non-finite price", ErrInvalidInput, i)
			}
		}
		if b.Low > b.High {
			return fmt.Errorf("%w: bar %d low %v above high %v", ErrInvalidInput, i, b.Low, b.High)
		}
		if b.Open < b.Low || b.Open > b.High || b.Close < b.Low || b.Close > b.High {
			return fmt.Errorf("%w: bar %d open/close outside [low, high]", ErrInvalidInput, i)
		}
		if i > 0 && !b.Time.After(s.Bars[i-1].Time) {
			return fmt.Errorf("%w: bar %d timestamp %s not after %s",
				ErrInvalidInput, i, b.Time.Format(time.RFC3339), s.Bars[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}
