// Package indicator computes the derived series and crossover signals drawn on the chart.
//
// Every function here is a pure transformation of an in-memory series: no I/O,
// no shared state, fresh slices on every call.
package indicator

import (
	"fmt"

	"stock_chart/internal/feature/chart/domain/entity"
)

// Trend returns the exponentially weighted moving average of close prices.
//
// The smoothing weight is alpha = 2/(period+1). The first point equals the first
// close, so the line has no warm-up gap:
//
//	out[0] = close[0]
//	out[i] = alpha*close[i] + (1-alpha)*out[i-1]
func Trend(series entity.Series, period int) ([]entity.Point, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: trend period must be >= 1, got %d", entity.ErrInvalidParameter, period)
	}

	out := make([]entity.Point, series.Len())
	if len(out) == 0 {
		return out, nil
	}

	alpha := 2.0 / float64(period+1)
	prev := series.Bars[0].Close
	out[0] = entity.Defined(prev)
	for i := 1; i < len(out); i++ {
		prev = alpha*series.Bars[i].Close + (1-alpha)*prev
		out[i] = entity.Defined(prev)
	}
	return out, nil
}
