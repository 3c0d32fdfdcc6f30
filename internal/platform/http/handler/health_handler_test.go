package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestHealth(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.GET("/healthz", Health)
	r.HEAD("/healthz", Health)
	r.OPTIONS("/healthz", Health)

	tests := []struct {
		method       string
		expectedCode int
		expectBody   bool
	}{
		{http.MethodGet, http.StatusOK, true},
		{http.MethodHead, http.StatusOK, false},
		{http.MethodOptions, http.StatusNoContent, false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, "/healthz", nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if tt.expectBody {
				assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
			} else {
				assert.Zero(t, w.Body.Len())
			}
		})
	}
}

func TestReady(t *testing.T) {
	t.Parallel()

	ok := Check{Name: "db", Fn: func(ctx context.Context) error { return nil }}
	down := Check{Name: "redis", Fn: func(ctx context.Context) error { return errors.New("connection refused") }}
	deadline := Check{Name: "slow", Fn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	tests := []struct {
		name           string
		checks         []Check
		expectedStatus int
		expectedChecks map[string]string
	}{
		{"no checks", nil, http.StatusOK, map[string]string{}},
		{"all ok", []Check{ok}, http.StatusOK, map[string]string{"db": "ok"}},
		{"one down", []Check{ok, down}, http.StatusServiceUnavailable, map[string]string{"db": "ok", "redis": "connection refused"}},
		{"timeout", []Check{deadline}, http.StatusServiceUnavailable, map[string]string{"slow": context.DeadlineExceeded.Error()}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := gin.New()
			r.GET("/readyz", Ready(20*time.Millisecond, tt.checks...))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tt.expectedStatus, w.Code)

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, http.StatusText(tt.expectedStatus), body.Status)
			assert.Equal(t, tt.expectedChecks, body.Checks)
		})
	}
}
