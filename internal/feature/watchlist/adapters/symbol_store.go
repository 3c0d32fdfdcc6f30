// Package adapters はwatchlistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_chart/internal/feature/watchlist/domain/entity"
	"stock_chart/internal/feature/watchlist/usecase"
)

// symbolStore はSymbolRepositoryインターフェースのgorm実装です。
type symbolStore struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolStore)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolStoreの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolStore {
	return &symbolStore{db: db}
}

// ListActive はsort_key順にすべてのアクティブな銘柄を返します。
func (r *symbolStore) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	var symbols []entity.Symbol
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// ListActiveCodes はsort_key順にアクティブな銘柄のコードのみを返します。
func (r *symbolStore) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&entity.Symbol{}).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Seed は銘柄を登録します。既存コードは名前・市場・並び順のみ更新し、is_activeは保持します。
func (r *symbolStore) Seed(ctx context.Context, symbols []entity.Symbol) error {
	if len(symbols) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "market", "sort_key", "updated_at"}),
	}).Create(&symbols).Error
}

// Exists は銘柄コードがウォッチリストに登録済みかを返します（is_activeは問わない）。
func (r *symbolStore) Exists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Symbol{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
