package entity

import (
	"fmt"
	"strings"
	"time"
)

// Lookback is the history window requested from a loader.
type Lookback string

const (
	Lookback3M  Lookback = "3mo"
	Lookback6M  Lookback = "6mo"
	Lookback1Y  Lookback = "1y"
	LookbackMax Lookback = "max"

	// DefaultLookback matches the dashboard's initial selection.
	DefaultLookback = Lookback6M
)

// ParseLookback converts user input into a Lookback. Empty input yields DefaultLookback.
func ParseLookback(s string) (Lookback, error) {
	switch lb := Lookback(strings.ToLower(strings.TrimSpace(s))); lb {
	case "":
		return DefaultLookback, nil
	case Lookback3M, Lookback6M, Lookback1Y, LookbackMax:
		return lb, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLookback, s)
	}
}

// Since returns the earliest bar time covered by the window ending at now.
// The second return value is false for LookbackMax, which has no lower bound.
func (l Lookback) Since(now time.Time) (time.Time, bool) {
	switch l {
	case Lookback3M:
		return now.AddDate(0, -3, 0), true
	case Lookback6M:
		return now.AddDate(0, -6, 0), true
	case Lookback1Y:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// TradingDays approximates the number of daily bars in the window.
// Providers that page by row count instead of by date use it as their output size.
func (l Lookback) TradingDays() int {
	switch l {
	case Lookback3M:
		return 63
	case Lookback6M:
		return 126
	case Lookback1Y:
		return 252
	default:
		return 5000
	}
}

// NormalizeSymbol trims and upper-cases a ticker the way the dashboard input does.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
