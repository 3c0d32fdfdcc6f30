// Package breaker guards upstream market data loaders with a circuit breaker.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"stock_chart/internal/feature/chart/domain/entity"
	"stock_chart/internal/feature/chart/usecase"
)

// Config controls when the breaker opens and how long it stays open.
type Config struct {
	Name        string
	MaxFailures uint32        // consecutive failures before opening
	OpenTimeout time.Duration // time spent open before a half-open probe
}

// StateRecorder receives breaker transitions. Implemented by the metrics package.
type StateRecorder interface {
	RecordBreakerState(name string, state string)
}

// Loader wraps a SeriesLoader. Only provider failures count against the breaker;
// unknown symbols, invalid input and caller cancellation do not trip it.
type Loader struct {
	inner usecase.SeriesLoader
	cb    *gobreaker.CircuitBreaker
}

var _ usecase.SeriesLoader = (*Loader)(nil)

// NewLoader returns a breaker-guarded loader. rec may be nil.
func NewLoader(inner usecase.SeriesLoader, cfg Config, rec StateRecorder) *Loader {
	if cfg.Name == "" {
		cfg.Name = "market"
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	st := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			if rec != nil {
				rec.RecordBreakerState(name, to.String())
			}
		},
	}
	if rec != nil {
		rec.RecordBreakerState(cfg.Name, gobreaker.StateClosed.String())
	}
	return &Loader{inner: inner, cb: gobreaker.NewCircuitBreaker(st)}
}

func countsAsSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, entity.ErrNotFound) ||
		errors.Is(err, entity.ErrInvalidInput) ||
		errors.Is(err, context.Canceled)
}

// Load forwards to the inner loader unless the breaker is open.
func (l *Loader) Load(ctx context.Context, symbol string, lookback entity.Lookback) (entity.Series, error) {
	v, err := l.cb.Execute(func() (interface{}, error) {
		return l.inner.Load(ctx, symbol, lookback)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return entity.Series{}, fmt.Errorf("%w: %s breaker %v", entity.ErrUnavailable, l.cb.Name(), err)
		}
		return entity.Series{}, err
	}
	return v.(entity.Series), nil
}

// State reports the current breaker state, e.g. for readiness checks.
func (l *Loader) State() string {
	return l.cb.State().String()
}
