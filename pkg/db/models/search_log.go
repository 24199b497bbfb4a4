package models

import "time"

// SearchLog is an append-only audit row recorded for every successful
// search, zero results included. Rows are removed only by the user
// deletion cascade.
type SearchLog struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       uint      `gorm:"column:user_id;not null;index"`
	SearchTerm   string    `gorm:"column:search_term;not null"`
	ResultsCount int       `gorm:"column:results_count;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime;index"`
}
