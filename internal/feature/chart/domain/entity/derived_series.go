package entity

import (
	"encoding/json"
	"time"
)

// Point is one element of a derived series. Defined is false inside a warm-up
// window where the rolling computation has not seen enough history yet.
type Point struct {
	Value   float64
	Defined bool
}

// Undefined is the zero Point.
var Undefined = Point{}

// Defined wraps v as a defined Point.
func Defined(v float64) Point { return Point{Value: v, Defined: true} }

// MarshalJSON encodes undefined points as null so renderers draw a gap.
func (p Point) MarshalJSON() ([]byte, error) {
	if !p.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON accepts a number or null.
func (p *Point) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Defined(v)
	return nil
}

// Names of the derived series emitted by the pipeline.
const (
	SeriesTrend1     = "trend1"
	SeriesTrend2     = "trend2"
	SeriesBandCenter = "band-center"
	SeriesBandUpper  = "band-upper"
	SeriesBandLower  = "band-lower"
	SeriesOscillator = "oscillator"
)

// DerivedSeries is a named sequence aligned index-for-index with the source series.
// An empty Points slice means the indicator could not be computed at all
// (for example bands over fewer bars than the window).
type DerivedSeries struct {
	Name    string
	Enabled bool
	Points  []Point
}

// Len returns the number of points.
func (d DerivedSeries) Len() int { return len(d.Points) }

// At returns the point at i, or Undefined when i is out of range.
func (d DerivedSeries) At(i int) Point {
	if i < 0 || i >= len(d.Points) {
		return Undefined
	}
	return d.Points[i]
}

// SignalKind is the direction of a crossover.
type SignalKind string

const (
	SignalBuy  SignalKind = "BUY"
	SignalSell SignalKind = "SELL"
)

// SignalEvent marks a bar where trend1 crossed trend2.
type SignalEvent struct {
	Time           time.Time
	Index          int
	Kind           SignalKind
	ReferencePrice float64 // close of the bar
	MarkerPrice    float64 // where the renderer places the marker: below the low for BUY, above the high for SELL
	Visible        bool
}
