// Package entity defines the domain models for the watchlist feature.
package entity

import "time"

// Symbol is one ticker on the dashboard's watchlist.
// Active symbols are offered in the picker and refreshed by the ingest job.
type Symbol struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:32;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	Market    string    `gorm:"size:100;not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName keeps the table name stable when the struct is renamed.
func (Symbol) TableName() string {
	return "watchlist_symbols"
}
