package indicator

import (
	"github.com/montanaflynn/stats"

	"stock_chart/internal/feature/chart/domain/entity"
)

// OscillatorWindow is the number of close-to-close deltas averaged per point.
const OscillatorWindow = 14

// Oscillator returns the relative strength oscillator in [0, 100].
//
// Each delta is split into a gain and a loss, both are averaged over the
// trailing OscillatorWindow deltas with a simple mean, and the point is
// 100 - 100/(1 + avgGain/avgLoss). A window without losses reads 100.
// The first OscillatorWindow points are undefined.
func Oscillator(series entity.Series) []entity.Point {
	n := series.Len()
	out := make([]entity.Point, n)
	if n <= OscillatorWindow {
		return out
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		d := series.Bars[i].Close - series.Bars[i-1].Close
		switch {
		case d > 0:
			gains[i] = d
		case d < 0:
			losses[i] = -d
		}
	}

	for i := OscillatorWindow; i < n; i++ {
		from := i - OscillatorWindow + 1
		avgGain, err := stats.Mean(gains[from : i+1])
		if err != nil {
			continue
		}
		avgLoss, err := stats.Mean(losses[from : i+1])
		if err != nil {
			continue
		}
		out[i] = entity.Defined(relativeStrength(avgGain, avgLoss))
	}
	return out
}

func relativeStrength(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}
