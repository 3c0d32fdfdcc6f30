package indicator

import (
	"fmt"

	"stock_chart/internal/feature/chart/domain/entity"
)

// Marker offsets relative to the bar extremes, so markers never cover the candle.
const (
	buyMarkerFactor  = 0.99
	sellMarkerFactor = 1.01
)

// Crossovers scans two aligned trend lines and emits a BUY where fast crosses
// above slow and a SELL where it crosses below:
//
//	BUY  at i: fast[i] > slow[i] && fast[i-1] <= slow[i-1]
//	SELL at i: fast[i] < slow[i] && fast[i-1] >= slow[i-1]
//
// Index 0 never signals, and neither does any index where one of the four
// compared points is undefined. visible is copied onto every event; it does not
// change which events are produced.
func Crossovers(series entity.Series, fast, slow []entity.Point, visible bool) ([]entity.SignalEvent, error) {
	n := series.Len()
	if len(fast) != n || len(slow) != n {
		return nil, fmt.Errorf("%w: trend lengths %d/%d do not match series length %d",
			entity.ErrInvalidInput, len(fast), len(slow), n)
	}

	events := []entity.SignalEvent{}
	for i := 1; i < n; i++ {
		kind, ok := crossingAt(fast, slow, i)
		if !ok {
			continue
		}
		bar := series.Bars[i]
		ev := entity.SignalEvent{
			Time:           bar.Time,
			Index:          i,
			Kind:           kind,
			ReferencePrice: bar.Close,
			Visible:        visible,
		}
		if kind == entity.SignalBuy {
			ev.MarkerPrice = bar.Low * buyMarkerFactor
		} else {
			ev.MarkerPrice = bar.High * sellMarkerFactor
		}
		events = append(events, ev)
	}
	return events, nil
}

func crossingAt(fast, slow []entity.Point, i int) (entity.SignalKind, bool) {
	f0, s0, f1, s1 := fast[i-1], slow[i-1], fast[i], slow[i]
	if !f0.Defined || !s0.Defined || !f1.Defined || !s1.Defined {
		return "", false
	}
	switch {
	case f1.Value > s1.Value && f0.Value <= s0.Value:
		return entity.SignalBuy, true
	case f1.Value < s1.Value && f0.Value >= s0.Value:
		return entity.SignalSell, true
	}
	return "", false
}
