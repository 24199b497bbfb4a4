package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/registropol/registropol-backend/pkg/config"
	"github.com/registropol/registropol-backend/pkg/db/models"
	"github.com/registropol/registropol-backend/pkg/enums"
	"github.com/registropol/registropol-backend/pkg/logger"
	"github.com/registropol/registropol-backend/pkg/security"
)

type bootstrapRepo interface {
	CountByRole(ctx context.Context, role enums.Role) (int64, error)
	Create(ctx context.Context, user *models.User) error
}

// EnsureAdmin seeds the default administrator when no admin account
// exists yet, so a fresh deployment is always reachable.
func EnsureAdmin(ctx context.Context, repo bootstrapRepo, cfg config.BootstrapConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) error {
	count, err := repo.CountByRole(ctx, enums.RoleAdmin)
	if err != nil {
		return fmt.Errorf("counting admin users: %w", err)
	}
	if count > 0 {
		return nil
	}

	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" {
		username = "admin"
	}
	hash, err := security.HashPassword(cfg.AdminPassword, passwordCfg)
	if err != nil {
		return fmt.Errorf("hashing bootstrap password: %w", err)
	}

	admin := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         enums.RoleAdmin,
		Status:       enums.UserStatusActive,
	}
	if cfg.AdminEmail != "" {
		email := cfg.AdminEmail
		admin.Email = &email
	}

	if err := repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("creating bootstrap admin: %w", err)
	}

	if logg != nil {
		ctx = logg.WithField(ctx, "username", username)
		logg.Warn(ctx, "bootstrap admin created with default credentials, change the password")
	}
	return nil
}
