package twelvedata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stock_chart/internal/feature/chart/domain/entity"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewTwelveDataMarket_DefaultBaseURL(t *testing.T) {
	t.Parallel()

	market := NewTwelveDataMarket(Config{APIKey: "k"}, &http.Client{})
	if market.cfg.BaseURL != DefaultBaseURL {
		t.Errorf("expected base URL %q, got %q", DefaultBaseURL, market.cfg.BaseURL)
	}
}

func TestTwelveDataMarket_Load_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/time_series" {
			t.Errorf("expected path /time_series, got %s", r.URL.Path)
		}
		if q.Get("symbol") != "AAPL" || q.Get("interval") != "1day" || q.Get("apikey") != "test-key" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Get("outputsize") != "126" {
			t.Errorf("expected outputsize 126 for 6mo, got %s", q.Get("outputsize"))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"meta": {"symbol": "AAPL", "interval": "1day", "exchange": "NASDAQ"},
			"values": [
				{"datetime": "2025-01-15", "open": "150.10", "high": "155.00", "low": "149.00", "close": "154.55", "volume": "1000000"},
				{"datetime": "2025-01-14", "open": "148.00", "high": "151.00", "low": "147.50", "close": "150.00", "volume": "900000"}
			]
		}`))
	}))
	defer server.Close()

	market := NewTwelveDataMarket(Config{APIKey: "test-key", BaseURL: server.URL + "/"}, server.Client())

	s, err := market.Load(context.Background(), "AAPL", entity.Lookback6M)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Symbol != "AAPL" || s.Lookback != entity.Lookback6M {
		t.Errorf("unexpected series header %q %q", s.Symbol, s.Lookback)
	}
	if len(s.Bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(s.Bars))
	}
	// 昇順に並べ替えられていること
	if !s.Bars[0].Time.Equal(time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected oldest bar first, got %s", s.Bars[0].Time)
	}
	if s.Bars[1].Open != 150.10 || s.Bars[1].Close != 154.55 || s.Bars[1].Volume != 1000000 {
		t.Errorf("unexpected newest bar %+v", s.Bars[1])
	}
	if err := s.Validate(); err != nil {
		t.Errorf("series should validate: %v", err)
	}
}

func TestTwelveDataMarket_Load_MissingVolume(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, http.StatusOK, `{"status":"ok","values":[
		{"datetime":"2025-01-14 00:00:00","open":"1.0850","high":"1.0900","low":"1.0800","close":"1.0875"}
	]}`)
	market := NewTwelveDataMarket(Config{BaseURL: server.URL}, server.Client())

	s, err := market.Load(context.Background(), "EUR/USD", entity.LookbackMax)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Bars[0].Volume != 0 || s.Bars[0].Close != 1.0875 {
		t.Errorf("unexpected bar %+v", s.Bars[0])
	}
}

func TestTwelveDataMarket_Load_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"http 404", http.StatusNotFound, ``, entity.ErrNotFound},
		{"http 500", http.StatusInternalServerError, ``, entity.ErrUnavailable},
		{"http 429", http.StatusTooManyRequests, ``, entity.ErrUnavailable},
		{"symbol not found body", http.StatusOK,
			`{"code":400,"message":"**symbol** not found: NOPE. Please specify it correctly","status":"error"}`, entity.ErrNotFound},
		{"invalid api key body", http.StatusOK,
			`{"code":401,"message":"Invalid API key","status":"error"}`, entity.ErrUnavailable},
		{"invalid json", http.StatusOK, `{invalid json`, entity.ErrUnavailable},
		{"bad datetime", http.StatusOK,
			`{"status":"ok","values":[{"datetime":"15/01/2025","open":"1","high":"1","low":"1","close":"1","volume":"1"}]}`, entity.ErrUnavailable},
		{"bad price", http.StatusOK,
			`{"status":"ok","values":[{"datetime":"2025-01-15","open":"abc","high":"1","low":"1","close":"1","volume":"1"}]}`, entity.ErrUnavailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(t, tt.status, tt.body)
			market := NewTwelveDataMarket(Config{APIKey: "test-key", BaseURL: server.URL}, server.Client())

			_, err := market.Load(context.Background(), "NOPE", entity.Lookback1Y)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTwelveDataMarket_Load_TransportError(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, http.StatusOK, `{}`)
	url := server.URL
	server.Close()

	market := NewTwelveDataMarket(Config{BaseURL: url}, &http.Client{Timeout: time.Second})
	_, err := market.Load(context.Background(), "AAPL", entity.Lookback3M)
	if !errors.Is(err, entity.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
