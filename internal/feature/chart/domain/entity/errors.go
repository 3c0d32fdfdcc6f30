package entity

import "errors"

// Domain errors for the chart feature.
// Loaders, the indicator pipeline and the handlers all speak in these sentinels;
// callers match them with errors.Is.
var (
	// ErrInvalidParameter indicates a malformed indicator configuration,
	// such as a non-positive trend period. It is returned before any computation starts.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidInput indicates a series that violates the pipeline's assumptions
	// (unordered or duplicate timestamps, low above high, non-finite prices).
	ErrInvalidInput = errors.New("invalid input series")

	// ErrInvalidLookback indicates a lookback window outside 3mo, 6mo, 1y and max.
	ErrInvalidLookback = errors.New("invalid lookback")

	// ErrNotFound indicates that the market data provider does not know the symbol.
	ErrNotFound = errors.New("symbol not found")

	// ErrUnavailable indicates a network or provider failure while loading bars.
	ErrUnavailable = errors.New("market data unavailable")
)
