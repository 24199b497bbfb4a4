package auth

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/registropol/registropol-backend/internal/audit"
	"github.com/registropol/registropol-backend/internal/users"
	"github.com/registropol/registropol-backend/pkg/config"
	"github.com/registropol/registropol-backend/pkg/db/models"
	"github.com/registropol/registropol-backend/pkg/enums"
	pkgerrors "github.com/registropol/registropol-backend/pkg/errors"
	"github.com/registropol/registropol-backend/pkg/security"
	"github.com/registropol/registropol-backend/pkg/session"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var authDBSeq atomic.Int64

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:auth_%d?mode=memory&cache=shared", authDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	usersTable := `
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
);`
	activityLogs := `
CREATE TABLE IF NOT EXISTS activity_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  action TEXT NOT NULL,
  description TEXT,
  created_at DATETIME
);`
	for _, ddl := range []string{usersTable, activityLogs} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

type memorySessions struct {
	entries map[string]uint
}

func newMemorySessions() *memorySessions {
	return &memorySessions{entries: make(map[string]uint)}
}

func (m *memorySessions) Save(ctx context.Context, token string, userID uint) error {
	m.entries[token] = userID
	return nil
}

func (m *memorySessions) Resolve(ctx context.Context, token string) (uint, error) {
	id, ok := m.entries[token]
	if !ok {
		return 0, session.ErrNoSession
	}
	return id, nil
}

func (m *memorySessions) Destroy(ctx context.Context, token string) error {
	delete(m.entries, token)
	return nil
}

func (m *memorySessions) TTL() time.Duration {
	return 168 * time.Hour
}

func buildAuthService(t *testing.T, db *gorm.DB) (Service, *memorySessions) {
	t.Helper()
	sessions := newMemorySessions()
	svc, err := NewService(ServiceParams{
		UserRepo:       users.NewRepository(db),
		SessionManager: sessions,
		Audit:          audit.NewRecorder(db, nil),
	})
	require.NoError(t, err)
	return svc, sessions
}

func seedAccount(t *testing.T, db *gorm.DB, username, password string, role enums.Role) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	require.NoError(t, err)
	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Status:       enums.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestLoginSuccess(t *testing.T) {
	db := setupAuthTestDB(t)
	svc, _ := buildAuthService(t, db)

	seedAccount(t, db, "officer1", "patrol-pass", enums.RoleOfficer)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "officer1", Password: "patrol-pass"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "registration", resp.LandingView)
	require.Equal(t, "officer1", resp.User.Username)
	require.True(t, resp.ExpiresAt.After(time.Now()))

	var activityCount int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("action = ?", audit.ActionLogin).Count(&activityCount).Error)
	require.EqualValues(t, 1, activityCount)
}

func TestLoginInvalidCredentialsAreGeneric(t *testing.T) {
	db := setupAuthTestDB(t)
	svc, _ := buildAuthService(t, db)
	ctx := context.Background()

	seedAccount(t, db, "officer1", "patrol-pass", enums.RoleOfficer)

	_, err := svc.Login(ctx, LoginRequest{Username: "officer1", Password: "wrong"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
	require.Equal(t, invalidCredentialsMessage, pkgerrors.As(err).Message())

	_, err = svc.Login(ctx, LoginRequest{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
	require.Equal(t, invalidCredentialsMessage, pkgerrors.As(err).Message())
}

func TestLoginSecondSessionConflicts(t *testing.T) {
	db := setupAuthTestDB(t)
	svc, _ := buildAuthService(t, db)
	ctx := context.Background()

	seedAccount(t, db, "agent1", "field-pass", enums.RoleAgent)

	_, err := svc.Login(ctx, LoginRequest{Username: "agent1", Password: "field-pass"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Username: "agent1", Password: "field-pass"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestLogoutFreesSessionSlot(t *testing.T) {
	db := setupAuthTestDB(t)
	svc, sessions := buildAuthService(t, db)
	ctx := context.Background()

	seedAccount(t, db, "agent1", "field-pass", enums.RoleAgent)

	resp, err := svc.Login(ctx, LoginRequest{Username: "agent1", Password: "field-pass"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.Token))
	require.Empty(t, sessions.entries)

	// Logout is idempotent.
	require.NoError(t, svc.Logout(ctx, resp.Token))

	_, err = svc.Login(ctx, LoginRequest{Username: "agent1", Password: "field-pass"})
	require.NoError(t, err)
}

func TestLoginSuspendedAccountRefused(t *testing.T) {
	db := setupAuthTestDB(t)
	svc, _ := buildAuthService(t, db)

	user := seedAccount(t, db, "suspended1", "some-pass", enums.RoleOfficer)
	require.NoError(t, db.Model(user).UpdateColumn("status", enums.UserStatusSuspended).Error)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "suspended1", Password: "some-pass"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestCurrentUserResolvesToken(t *testing.T) {
	db := setupAuthTestDB(t)
	svc, _ := buildAuthService(t, db)
	ctx := context.Background()

	seedAccount(t, db, "sup1", "super-pass", enums.RoleSupervisor)

	resp, err := svc.Login(ctx, LoginRequest{Username: "sup1", Password: "super-pass"})
	require.NoError(t, err)

	user, err := svc.CurrentUser(ctx, resp.Token)
	require.NoError(t, err)
	require.Equal(t, "sup1", user.Username)
}

func TestCurrentUserSuspensionRevokesSession(t *testing.T) {
	db := setupAuthTestDB(t)
	svc, sessions := buildAuthService(t, db)
	ctx := context.Background()

	user := seedAccount(t, db, "sup1", "super-pass", enums.RoleSupervisor)

	resp, err := svc.Login(ctx, LoginRequest{Username: "sup1", Password: "super-pass"})
	require.NoError(t, err)

	require.NoError(t, db.Model(user).UpdateColumn("status", enums.UserStatusSuspended).Error)

	_, err = svc.CurrentUser(ctx, resp.Token)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
	require.Empty(t, sessions.entries)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.Nil(t, reloaded.ActiveSessionID)
}

func TestCurrentUserStaleTokenRejected(t *testing.T) {
	db := setupAuthTestDB(t)
	svc, sessions := buildAuthService(t, db)
	ctx := context.Background()

	user := seedAccount(t, db, "agent2", "pass-word", enums.RoleAgent)

	// Session store entry without a matching DB slot.
	sessions.entries["orphan-token"] = user.ID

	_, err := svc.CurrentUser(ctx, "orphan-token")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
	require.NotContains(t, sessions.entries, "orphan-token")
}

func TestEnsureAdminSeedsOnce(t *testing.T) {
	db := setupAuthTestDB(t)
	repo := users.NewRepository(db)
	cfg := config.BootstrapConfig{AdminUsername: "admin", AdminPassword: "admin123"}

	require.NoError(t, EnsureAdmin(context.Background(), repo, cfg, config.PasswordConfig{}, nil))
	require.NoError(t, EnsureAdmin(context.Background(), repo, cfg, config.PasswordConfig{}, nil))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", enums.RoleAdmin).Count(&count).Error)
	require.EqualValues(t, 1, count)

	admin, err := repo.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	valid, err := security.VerifyPassword("admin123", admin.PasswordHash)
	require.NoError(t, err)
	require.True(t, valid)
}
