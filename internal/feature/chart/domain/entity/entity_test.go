package entity

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLookback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Lookback
		wantErr bool
	}{
		{"", Lookback6M, false},
		{"3mo", Lookback3M, false},
		{" 1Y ", Lookback1Y, false},
		{"MAX", LookbackMax, false},
		{"5d", "", true},
		{"2y", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLookback(tt.in)
		if tt.wantErr {
			assert.True(t, errors.Is(err, ErrInvalidLookback), "input %q: got %v", tt.in, err)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestLookback_Since(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	since, ok := Lookback3M.Since(now)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 30, 12, 0, 0, 0, time.UTC), since)

	since, ok = Lookback1Y.Since(now)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC), since)

	_, ok = LookbackMax.Since(now)
	assert.False(t, ok)
}

func TestSeries_Validate(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bar := func(day int, o, h, l, c float64) Bar {
		return Bar{Time: t0.AddDate(0, 0, day), Open: o, High: h, Low: l, Close: c}
	}

	tests := []struct {
		name    string
		bars    []Bar
		wantErr bool
	}{
		{"empty", nil, false},
		{"well formed", []Bar{bar(0, 10, 12, 9, 11), bar(1, 11, 13, 10, 12)}, false},
		{"flat bar", []Bar{bar(0, 10, 10, 10, 10)}, false},
		{"descending time", []Bar{bar(1, 10, 12, 9, 11), bar(0, 11, 13, 10, 12)}, true},
		{"duplicate time", []Bar{bar(0, 10, 12, 9, 11), bar(0, 11, 13, 10, 12)}, true},
		{"low above high", []Bar{bar(0, 10, 9, 12, 11)}, true},
		{"close above high", []Bar{bar(0, 10, 12, 9, 13)}, true},
		{"open below low", []Bar{bar(0, 8, 12, 9, 11)}, true},
		{"nan close", []Bar{bar(0, 10, 12, 9, math.NaN())}, true},
		{"infinite high", []Bar{bar(0, 10, math.Inf(1), 9, 11)}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Series{Symbol: "X", Bars: tt.bars}.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPoint_JSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal([]Point{Defined(1.5), Undefined, Defined(0)})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5,null,0]`, string(b))

	var back []Point
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, []Point{Defined(1.5), Undefined, Defined(0)}, back)
}

func TestIndicatorConfig_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultIndicatorConfig().Validate())

	cfg := DefaultIndicatorConfig()
	cfg.Trend1Period = 0
	assert.True(t, errors.Is(cfg.Validate(), ErrInvalidParameter))

	cfg = DefaultIndicatorConfig()
	cfg.Trend2Period = -5
	assert.True(t, errors.Is(cfg.Validate(), ErrInvalidParameter))
}
