package dashboard

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/registropol/registropol-backend/pkg/db/models"
	"github.com/registropol/registropol-backend/pkg/enums"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dashboardDBSeq atomic.Int64

func setupDashboardTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:dashboard_%d?mode=memory&cache=shared", dashboardDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT,
  last_name TEXT,
  email TEXT,
  role TEXT NOT NULL DEFAULT 'officer',
  status TEXT NOT NULL DEFAULT 'active',
  suspended_until DATETIME,
  suspended_reason TEXT,
  active_session_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS detainees (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  full_name TEXT NOT NULL,
  cedula TEXT NOT NULL UNIQUE,
  birth_date DATETIME NOT NULL,
  state TEXT NOT NULL,
  municipality TEXT NOT NULL,
  parish TEXT NOT NULL,
  address TEXT NOT NULL,
  registro TEXT,
  phone TEXT,
  photo_url TEXT,
  id_document_url TEXT,
  registered_by INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS search_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  search_term TEXT NOT NULL,
  results_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS activity_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  action TEXT NOT NULL,
  description TEXT,
  created_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedDetainee(t *testing.T, db *gorm.DB, cedula string, createdAt time.Time) {
	t.Helper()
	detainee := &models.Detainee{
		FullName:     "Juan Perez",
		Cedula:       cedula,
		BirthDate:    time.Date(1990, 4, 17, 0, 0, 0, 0, time.UTC),
		State:        "Miranda",
		Municipality: "Chacao",
		Parish:       "San Jose",
		Address:      "Av. Principal",
		RegisteredBy: 1,
	}
	require.NoError(t, db.Create(detainee).Error)
	require.NoError(t, db.Model(detainee).UpdateColumn("created_at", createdAt).Error)
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)
}

func buildDashboardService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{DB: db, Now: fixedNow})
	require.NoError(t, err)
	return svc
}

func TestStatsCountsToday(t *testing.T) {
	db := setupDashboardTestDB(t)
	svc := buildDashboardService(t, db)
	ctx := context.Background()

	now := fixedNow()
	yesterday := now.Add(-24 * time.Hour)

	seedDetainee(t, db, "V-1", now.Add(-time.Hour))
	seedDetainee(t, db, "V-2", yesterday)

	logs := []struct {
		userID uint
		at     time.Time
	}{
		{userID: 1, at: now.Add(-2 * time.Hour)},
		{userID: 1, at: now.Add(-time.Hour)},
		{userID: 2, at: now.Add(-30 * time.Minute)},
		{userID: 3, at: yesterday},
	}
	for _, entry := range logs {
		row := &models.ActivityLog{UserID: entry.userID, Action: "search"}
		require.NoError(t, db.Create(row).Error)
		require.NoError(t, db.Model(row).UpdateColumn("created_at", entry.at).Error)
	}

	search := &models.SearchLog{UserID: 1, SearchTerm: "V-1", ResultsCount: 1}
	require.NoError(t, db.Create(search).Error)
	require.NoError(t, db.Model(search).UpdateColumn("created_at", now.Add(-time.Minute)).Error)

	stale := &models.SearchLog{UserID: 1, SearchTerm: "V-2", ResultsCount: 0}
	require.NoError(t, db.Create(stale).Error)
	require.NoError(t, db.Model(stale).UpdateColumn("created_at", yesterday).Error)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.TotalRecords)
	require.EqualValues(t, 2, stats.ActiveUsersToday)
	require.EqualValues(t, 1, stats.SearchesToday)
	require.EqualValues(t, 1, stats.RegistrationsToday)
}

func TestRecentActivitiesJoinsUsernames(t *testing.T) {
	db := setupDashboardTestDB(t)
	svc := buildDashboardService(t, db)
	ctx := context.Background()

	user := &models.User{Username: "officer1", PasswordHash: "x", Role: enums.RoleOfficer, Status: enums.UserStatusActive}
	require.NoError(t, db.Create(user).Error)

	for i := 0; i < 12; i++ {
		row := &models.ActivityLog{UserID: user.ID, Action: "search"}
		require.NoError(t, db.Create(row).Error)
		require.NoError(t, db.Model(row).UpdateColumn("created_at", fixedNow().Add(time.Duration(i)*time.Minute)).Error)
	}

	entries, err := svc.RecentActivities(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 10)
	require.Equal(t, "officer1", entries[0].Username)
	require.True(t, entries[0].CreatedAt.After(entries[9].CreatedAt))
}

func seedActivity(t *testing.T, db *gorm.DB, action string, createdAt time.Time) {
	t.Helper()
	row := &models.ActivityLog{UserID: 1, Action: action}
	require.NoError(t, db.Create(row).Error)
	require.NoError(t, db.Model(row).UpdateColumn("created_at", createdAt).Error)
}

func TestWeeklyActivityFillsEmptyDays(t *testing.T) {
	db := setupDashboardTestDB(t)
	svc := buildDashboardService(t, db)
	ctx := context.Background()

	now := fixedNow()
	seedActivity(t, db, "login", now.AddDate(0, 0, -3))
	seedActivity(t, db, "login", now.AddDate(0, 0, -3).Add(time.Hour))
	seedActivity(t, db, "login", now.AddDate(0, 0, -3).Add(2*time.Hour))
	seedActivity(t, db, "registration", now.Add(-time.Hour))
	seedActivity(t, db, "search", now.AddDate(0, 0, -8))

	week, err := svc.WeeklyActivity(ctx)
	require.NoError(t, err)
	require.Len(t, week, 7)

	require.Equal(t, now.AddDate(0, 0, -6).Format("2006-01-02"), week[0].Date)
	require.Equal(t, now.Format("2006-01-02"), week[6].Date)

	require.EqualValues(t, 3, week[3].Count)
	require.EqualValues(t, 1, week[6].Count)
	require.Zero(t, week[0].Count)
	require.Zero(t, week[2].Count)
}
