package detainees

import (
	"context"
	"strings"

	"github.com/registropol/registropol-backend/pkg/db/models"
	"github.com/registropol/registropol-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes detainee persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a detainees repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new detainee record.
func (r *Repository) Create(ctx context.Context, detainee *models.Detainee) error {
	return r.db.WithContext(ctx).Create(detainee).Error
}

// Search folds the supplied criteria into one query. Cedula and the
// location fields match exactly; the name is a case-insensitive
// substring. Results are newest first.
func (r *Repository) Search(ctx context.Context, criteria SearchCriteria, limit int, cursor *pagination.Cursor) ([]models.Detainee, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(limit)

	query := applyCriteria(r.db.WithContext(ctx).Model(&models.Detainee{}), criteria).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit))

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Detainee
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

// Count returns the number of records matching the criteria across all
// pages.
func (r *Repository) Count(ctx context.Context, criteria SearchCriteria) (int64, error) {
	var count int64
	err := applyCriteria(r.db.WithContext(ctx).Model(&models.Detainee{}), criteria).
		Count(&count).Error
	return count, err
}

func applyCriteria(query *gorm.DB, criteria SearchCriteria) *gorm.DB {
	if criteria.Cedula != "" {
		query = query.Where("cedula = ?", criteria.Cedula)
	}
	if criteria.Name != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(criteria.Name)) + "%"
		query = query.Where("LOWER(full_name) LIKE ?", pattern)
	}
	if criteria.State != "" {
		query = query.Where("state = ?", criteria.State)
	}
	if criteria.Municipality != "" {
		query = query.Where("municipality = ?", criteria.Municipality)
	}
	if criteria.Parish != "" {
		query = query.Where("parish = ?", criteria.Parish)
	}
	return query
}
