// Package audit appends activity and search trail rows. Recording is
// best effort: a failed insert is logged and swallowed so audit outages
// never fail the operation being audited.
package audit

import (
	"context"

	"github.com/registropol/registropol-backend/pkg/db/models"
	"github.com/registropol/registropol-backend/pkg/logger"
	"gorm.io/gorm"
)

// Action names recorded in the activity trail.
const (
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionRegistration   = "registration"
	ActionSearch         = "search"
	ActionAdvancedSearch = "advanced_search"
	ActionUserCreated    = "user_created"
	ActionUserUpdated    = "user_updated"
	ActionUserSuspended  = "user_suspended"
	ActionUserReactivate = "user_reactivated"
	ActionUserDeleted    = "user_deleted"
)

// Recorder writes audit rows for user actions and searches.
type Recorder struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewRecorder builds an audit recorder bound to the provided GORM DB.
func NewRecorder(db *gorm.DB, logg *logger.Logger) *Recorder {
	return &Recorder{db: db, logg: logg}
}

// Activity appends one activity trail row.
func (r *Recorder) Activity(ctx context.Context, userID uint, action string, description string) {
	if r == nil || r.db == nil {
		return
	}
	entry := models.ActivityLog{
		UserID: userID,
		Action: action,
	}
	if description != "" {
		entry.Description = &description
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil && r.logg != nil {
		r.logg.Error(ctx, "recording activity log failed", err)
	}
}

// Search appends one search trail row. Zero-result searches are
// recorded too.
func (r *Recorder) Search(ctx context.Context, userID uint, term string, results int) {
	if r == nil || r.db == nil {
		return
	}
	entry := models.SearchLog{
		UserID:       userID,
		SearchTerm:   term,
		ResultsCount: results,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil && r.logg != nil {
		r.logg.Error(ctx, "recording search log failed", err)
	}
}
