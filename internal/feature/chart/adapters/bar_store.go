// Package adapters contains the persistence side of the chart feature.
package adapters

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_chart/internal/feature/chart/domain/entity"
	"stock_chart/internal/feature/chart/usecase"
)

// BarModel is one stored daily bar. (symbol, time) is unique so re-ingesting is idempotent.
type BarModel struct {
	ID     uint      `gorm:"primaryKey"`
	Symbol string    `gorm:"size:32;not null;uniqueIndex:bar_sym_time,priority:1"`
	Time   time.Time `gorm:"not null;uniqueIndex:bar_sym_time,priority:2"`

	Open   float64 `gorm:"not null"`
	High   float64 `gorm:"not null"`
	Low    float64 `gorm:"not null"`
	Close  float64 `gorm:"not null"`
	Volume int64   `gorm:"not null;default:0"`
}

func (BarModel) TableName() string {
	return "bars"
}

// SymbolCatalog reports whether a symbol is on the watchlist.
type SymbolCatalog interface {
	Exists(ctx context.Context, code string) (bool, error)
}

type barStore struct {
	db      *gorm.DB
	now     func() time.Time
	catalog SymbolCatalog
}

var (
	_ usecase.SeriesLoader  = (*barStore)(nil)
	_ usecase.BarRepository = (*barStore)(nil)
)

// NewBarStore returns a gorm-backed store that both persists ingested bars and
// serves them back as a SeriesLoader. now anchors the lookback window; nil means time.Now.
func NewBarStore(db *gorm.DB, now func() time.Time) *barStore {
	if now == nil {
		now = time.Now
	}
	return &barStore{db: db, now: now}
}

// WithCatalog makes Load treat a watchlisted symbol without stored bars as an
// empty series instead of entity.ErrNotFound.
func (r *barStore) WithCatalog(c SymbolCatalog) *barStore {
	r.catalog = c
	return r
}

func toModel(symbol string, b entity.Bar) BarModel {
	return BarModel{
		Symbol: symbol,
		Time:   b.Time.UTC(),
		Open:   b.Open,
		High:   b.High,
		Low:    b.Low,
		Close:  b.Close,
		Volume: b.Volume,
	}
}

func (r *barStore) UpsertBatch(ctx context.Context, symbol string, bars []entity.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	symbol = entity.NormalizeSymbol(symbol)
	ms := make([]BarModel, 0, len(bars))
	for _, b := range bars {
		ms = append(ms, toModel(symbol, b))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "time"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).CreateInBatches(&ms, 500).Error
}

// Load returns the stored bars in ascending order. A symbol with no stored bars that the
// catalog does not know is entity.ErrNotFound; any other symbol without bars inside the
// window is an empty series.
func (r *barStore) Load(ctx context.Context, symbol string, lookback entity.Lookback) (entity.Series, error) {
	symbol = entity.NormalizeSymbol(symbol)

	var rows []BarModel
	q := r.db.WithContext(ctx).Where("symbol = ?", symbol).Order("time ASC")
	if since, ok := lookback.Since(r.now()); ok {
		q = q.Where("time >= ?", since.UTC())
	}
	if err := q.Find(&rows).Error; err != nil {
		return entity.Series{}, fmt.Errorf("%w: query bars: %v", entity.ErrUnavailable, err)
	}

	if len(rows) == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&BarModel{}).Where("symbol = ?", symbol).Count(&count).Error; err != nil {
			return entity.Series{}, fmt.Errorf("%w: count bars: %v", entity.ErrUnavailable, err)
		}
		if count == 0 {
			known, err := r.known(ctx, symbol)
			if err != nil {
				return entity.Series{}, fmt.Errorf("%w: lookup watchlist: %v", entity.ErrUnavailable, err)
			}
			if !known {
				return entity.Series{}, fmt.Errorf("%w: %s has no stored bars", entity.ErrNotFound, symbol)
			}
		}
	}

	bars := make([]entity.Bar, 0, len(rows))
	for _, m := range rows {
		bars = append(bars, entity.Bar{
			Time:   m.Time.UTC(),
			Open:   m.Open,
			High:   m.High,
			Low:    m.Low,
			Close:  m.Close,
			Volume: m.Volume,
		})
	}
	return entity.Series{Symbol: symbol, Lookback: lookback, Bars: bars}, nil
}

func (r *barStore) known(ctx context.Context, symbol string) (bool, error) {
	if r.catalog == nil {
		return false, nil
	}
	return r.catalog.Exists(ctx, symbol)
}
