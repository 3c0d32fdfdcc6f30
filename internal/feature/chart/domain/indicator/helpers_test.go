package indicator_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stock_chart/internal/feature/chart/domain/entity"
)

var baseTime = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// seriesOf builds a daily series whose bars open and close at the given price
// with a one-unit range around it.
func seriesOf(closes ...float64) entity.Series {
	bars := make([]entity.Bar, len(closes))
	for i, c := range closes {
		bars[i] = entity.Bar{
			Time:  baseTime.AddDate(0, 0, i),
			Open:  c,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		}
	}
	return entity.Series{Symbol: "TEST", Lookback: entity.Lookback6M, Bars: bars}
}

// wave returns n closes oscillating around 100 with a slow drift.
func wave(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 8*math.Sin(float64(i)/3) + 0.2*float64(i)
	}
	return out
}

func points(vs ...float64) []entity.Point {
	out := make([]entity.Point, len(vs))
	for i, v := range vs {
		out[i] = entity.Defined(v)
	}
	return out
}

func assertValues(t *testing.T, want []float64, got []entity.Point) {
	t.Helper()
	if !assert.Len(t, got, len(want)) {
		return
	}
	for i := range want {
		assert.True(t, got[i].Defined, "point %d should be defined", i)
		assert.InDelta(t, want[i], got[i].Value, 1e-9, "point %d", i)
	}
}
