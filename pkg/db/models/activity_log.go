package models

import "time"

// ActivityLog is the append-only audit trail of user actions (login,
// logout, registration, search, admin operations).
type ActivityLog struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"column:user_id;not null;index"`
	Action      string    `gorm:"not null"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;index"`
}
