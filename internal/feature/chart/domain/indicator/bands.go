package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/montanaflynn/stats"

	"stock_chart/internal/feature/chart/domain/entity"
)

const (
	// BandWindow is the number of trailing closes behind each band point.
	BandWindow = 20
	// BandWidth is the number of standard deviations between the center and each band.
	BandWidth = 2.0
)

// Bands returns the center, upper and lower volatility bands.
//
// center is the 20-bar simple moving average of close, and the bands sit
// BandWidth sample standard deviations of the same window above and below it.
// Points before the 20th bar are undefined. A series shorter than the window
// yields three empty series rather than an error.
func Bands(series entity.Series) (center, upper, lower []entity.Point) {
	n := series.Len()
	if n < BandWindow {
		return []entity.Point{}, []entity.Point{}, []entity.Point{}
	}

	closes := series.Closes()
	sma := talib.Sma(closes, BandWindow)

	center = make([]entity.Point, n)
	upper = make([]entity.Point, n)
	lower = make([]entity.Point, n)
	for i := BandWindow - 1; i < n; i++ {
		dev, err := stats.StandardDeviationSample(closes[i-BandWindow+1 : i+1])
		if err != nil {
			continue
		}
		mid := sma[i]
		center[i] = entity.Defined(mid)
		upper[i] = entity.Defined(mid + BandWidth*dev)
		lower[i] = entity.Defined(mid - BandWidth*dev)
	}
	return center, upper, lower
}
