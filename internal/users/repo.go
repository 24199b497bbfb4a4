package users

import (
	"context"
	"strings"

	"github.com/registropol/registropol-backend/pkg/db/models"
	"github.com/registropol/registropol-backend/pkg/enums"
	"github.com/registropol/registropol-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByUsername retrieves the user matching the provided username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by primary key.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ClaimSession atomically records the token as the user's single
// session. A false return means another session already holds the slot.
func (r *Repository) ClaimSession(ctx context.Context, id uint, token string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND active_session_id IS NULL", id).
		UpdateColumn("active_session_id", token)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseSessionByToken frees the session slot held by the token.
func (r *Repository) ReleaseSessionByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("active_session_id = ?", token).
		UpdateColumn("active_session_id", nil).Error
}

// ReleaseSessionByUser frees the user's session slot unconditionally.
func (r *Repository) ReleaseSessionByUser(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("active_session_id", nil).Error
}

// Save persists the mutable profile columns of an existing user.
func (r *Repository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// CountByRole counts users holding the role.
func (r *Repository) CountByRole(ctx context.Context, role enums.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", role).
		Count(&count).Error
	return count, err
}

// List returns a page of users ordered newest first.
func (r *Repository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.User, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).
		Model(&models.User{}).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit))

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.User
	if err := query.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: uint64(last.ID)}
	}
	return rows, next, nil
}

// Search folds the supplied filters into ANDed predicates. The term
// matches username and both name columns, case-insensitive.
func (r *Repository) Search(ctx context.Context, q SearchQuery) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if term := strings.ToLower(strings.TrimSpace(q.Term)); term != "" {
		pattern := "%" + term + "%"
		query = query.Where(
			"LOWER(username) LIKE ? OR LOWER(COALESCE(first_name, '')) LIKE ? OR LOWER(COALESCE(last_name, '')) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if q.Role != "" {
		query = query.Where("role = ?", q.Role)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	var rows []models.User
	err := query.Order("created_at DESC, id DESC").Find(&rows).Error
	return rows, err
}

// DeleteCascade removes the user and every audit row that references
// them. Callers run this inside a transaction.
func (r *Repository) DeleteCascade(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", id).Delete(&models.ActivityLog{}).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Where("user_id = ?", id).Delete(&models.SearchLog{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}
