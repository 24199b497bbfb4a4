package models

import (
	"time"

	"github.com/registropol/registropol-backend/pkg/enums"
)

// User represents the canonical identity entity. ActiveSessionID holds
// the single currently-valid session token; at most one non-null value
// exists per logged-in account.
type User struct {
	ID              uint             `gorm:"primaryKey"`
	Username        string           `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash    string           `gorm:"column:password_hash;not null"`
	FirstName       *string          `gorm:"column:first_name"`
	LastName        *string          `gorm:"column:last_name"`
	Email           *string          `gorm:"column:email"`
	Role            enums.Role       `gorm:"type:text;not null;default:officer"`
	Status          enums.UserStatus `gorm:"type:text;not null;default:active"`
	SuspendedUntil  *time.Time       `gorm:"column:suspended_until"`
	SuspendedReason *string          `gorm:"column:suspended_reason"`
	ActiveSessionID *string          `gorm:"column:active_session_id"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
