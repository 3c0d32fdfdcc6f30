// Package yahoo provides a SeriesLoader backed by the Yahoo Finance chart API.
package yahoo

import "time"

// DefaultBaseURL is the public chart API host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Config holds configuration for the Yahoo Finance client.
type Config struct {
	BaseURL   string            // e.g. "https://query1.finance.yahoo.com"
	UserAgent string            // Yahoo rejects requests without a browser-like agent
	Timeout   time.Duration     // HTTP request timeout
	SymbolMap map[string]string // dashboard symbol -> Yahoo ticker, e.g. "SPX" -> "^GSPC"
}
