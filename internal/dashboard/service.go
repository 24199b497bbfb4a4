// Package dashboard aggregates counters for the admin and supervisor
// landing view. "Today" means the server's local calendar day.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/registropol/registropol-backend/pkg/db/models"
	pkgerrors "github.com/registropol/registropol-backend/pkg/errors"
	"gorm.io/gorm"
)

const recentActivityLimit = 10

// Stats is the headline counter block.
type Stats struct {
	TotalRecords       int64 `json:"total_records"`
	ActiveUsersToday   int64 `json:"active_users_today"`
	SearchesToday      int64 `json:"searches_today"`
	RegistrationsToday int64 `json:"registrations_today"`
}

// ActivityEntry is one row of the recent-activity feed.
type ActivityEntry struct {
	UserID      uint      `json:"user_id"`
	Username    string    `json:"username"`
	Action      string    `json:"action"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DailyActivity is one day of the weekly chart.
type DailyActivity struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Service computes dashboard aggregates.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// ServiceParams bundles the dependencies required to build a dashboard service.
type ServiceParams struct {
	DB  *gorm.DB
	Now func() time.Time
}

// NewService constructs a dashboard service.
func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{db: params.DB, now: now}, nil
}

// Stats returns the headline counters for the current day.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	dayStart := startOfDay(s.now())
	stats := &Stats{}

	if err := s.db.WithContext(ctx).Model(&models.Detainee{}).Count(&stats.TotalRecords).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count records")
	}
	err := s.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("created_at >= ?", dayStart).
		Distinct("user_id").
		Count(&stats.ActiveUsersToday).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active users")
	}
	err = s.db.WithContext(ctx).
		Model(&models.SearchLog{}).
		Where("created_at >= ?", dayStart).
		Count(&stats.SearchesToday).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count searches")
	}
	err = s.db.WithContext(ctx).
		Model(&models.Detainee{}).
		Where("created_at >= ?", dayStart).
		Count(&stats.RegistrationsToday).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count registrations")
	}

	return stats, nil
}

// RecentActivities returns the latest audit trail rows with the actor's
// username resolved. Rows of deleted users are gone with the cascade,
// so the join is inner.
func (s *Service) RecentActivities(ctx context.Context) ([]ActivityEntry, error) {
	var entries []ActivityEntry
	err := s.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("activity_logs.user_id, users.username, activity_logs.action, activity_logs.description, activity_logs.created_at").
		Joins("JOIN users ON users.id = activity_logs.user_id").
		Order("activity_logs.created_at DESC, activity_logs.id DESC").
		Limit(recentActivityLimit).
		Scan(&entries).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recent activities")
	}
	return entries, nil
}

// WeeklyActivity returns per-day counts of the audit trail for the
// trailing seven days, oldest first. Days with no rows appear as zeros.
func (s *Service) WeeklyActivity(ctx context.Context) ([]DailyActivity, error) {
	today := startOfDay(s.now())
	windowStart := today.AddDate(0, 0, -6)

	var rows []dayCount
	err := s.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("DATE(created_at) AS day, COUNT(*) AS total").
		Where("created_at >= ?", windowStart).
		Group("DATE(created_at)").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count weekly activity")
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Day] = row.Total
	}

	days := make([]DailyActivity, 0, 7)
	for i := 0; i < 7; i++ {
		date := windowStart.AddDate(0, 0, i).Format("2006-01-02")
		days = append(days, DailyActivity{Date: date, Count: counts[date]})
	}
	return days, nil
}

type dayCount struct {
	Day   string
	Total int64
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
