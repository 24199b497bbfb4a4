package detainees

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/registropol/registropol-backend/internal/audit"
	pkgdb "github.com/registropol/registropol-backend/pkg/db"
	"github.com/registropol/registropol-backend/pkg/db/models"
	pkgerrors "github.com/registropol/registropol-backend/pkg/errors"
	"github.com/registropol/registropol-backend/pkg/pagination"
)

// Service defines the behavior needed by the detainees controller.
type Service interface {
	Register(ctx context.Context, actorID uint, req RegisterRequest) (*DetaineeDTO, error)
	SearchSimple(ctx context.Context, actorID uint, cedula string, params pagination.Params) (*SearchResult, error)
	SearchAdvanced(ctx context.Context, actorID uint, criteria SearchCriteria, params pagination.Params) (*SearchResult, error)
}

type repository interface {
	Create(ctx context.Context, detainee *models.Detainee) error
	Search(ctx context.Context, criteria SearchCriteria, limit int, cursor *pagination.Cursor) ([]models.Detainee, *pagination.Cursor, error)
	Count(ctx context.Context, criteria SearchCriteria) (int64, error)
}

type auditor interface {
	Activity(ctx context.Context, userID uint, action string, description string)
	Search(ctx context.Context, userID uint, term string, results int)
}

type service struct {
	repo  repository
	audit auditor
}

// ServiceParams bundles the dependencies required to build a detainees service.
type ServiceParams struct {
	Repo  repository
	Audit auditor
}

// NewService constructs a registry service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("detainee repository is required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &service{repo: params.Repo, audit: params.Audit}, nil
}

// Register persists a new record. The cedula is normalized before the
// uniqueness check so "12345678" and "v-12345678" collide.
func (s *service) Register(ctx context.Context, actorID uint, req RegisterRequest) (*DetaineeDTO, error) {
	cedula, err := NormalizeCedula(req.Cedula)
	if err != nil {
		return nil, err
	}

	birthDate, err := time.Parse(birthDateLayout, strings.TrimSpace(req.BirthDate))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "birth_date must be formatted as YYYY-MM-DD")
	}

	detainee := &models.Detainee{
		FullName:      strings.TrimSpace(req.FullName),
		Cedula:        cedula,
		BirthDate:     birthDate,
		State:         strings.TrimSpace(req.State),
		Municipality:  strings.TrimSpace(req.Municipality),
		Parish:        strings.TrimSpace(req.Parish),
		Address:       strings.TrimSpace(req.Address),
		Registro:      req.Registro,
		Phone:         req.Phone,
		PhotoURL:      req.PhotoURL,
		IDDocumentURL: req.IDDocumentURL,
		RegisteredBy:  actorID,
	}

	if err := s.repo.Create(ctx, detainee); err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a record with this cedula already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create detainee")
	}

	s.audit.Activity(ctx, actorID, audit.ActionRegistration, fmt.Sprintf("registered %s", cedula))
	return FromModel(detainee), nil
}

// SearchSimple looks up records by cedula only.
func (s *service) SearchSimple(ctx context.Context, actorID uint, cedula string, params pagination.Params) (*SearchResult, error) {
	normalized, err := NormalizeCedula(cedula)
	if err != nil {
		return nil, err
	}

	result, err := s.search(ctx, SearchCriteria{Cedula: normalized}, params)
	if err != nil {
		return nil, err
	}

	s.audit.Search(ctx, actorID, normalized, result.Total)
	s.audit.Activity(ctx, actorID, audit.ActionSearch, normalized)
	return result, nil
}

// SearchAdvanced folds every supplied criterion into one query. At
// least one criterion is required.
func (s *service) SearchAdvanced(ctx context.Context, actorID uint, criteria SearchCriteria, params pagination.Params) (*SearchResult, error) {
	criteria = trimCriteria(criteria)
	if criteria.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one search criterion is required")
	}
	if criteria.Cedula != "" {
		normalized, err := NormalizeCedula(criteria.Cedula)
		if err != nil {
			return nil, err
		}
		criteria.Cedula = normalized
	}

	result, err := s.search(ctx, criteria, params)
	if err != nil {
		return nil, err
	}

	s.audit.Search(ctx, actorID, describeCriteria(criteria), result.Total)
	s.audit.Activity(ctx, actorID, audit.ActionAdvancedSearch, describeCriteria(criteria))
	return result, nil
}

func (s *service) search(ctx context.Context, criteria SearchCriteria, params pagination.Params) (*SearchResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.Search(ctx, criteria, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search detainees")
	}

	// Total spans every page, not just the one returned.
	total, err := s.repo.Count(ctx, criteria)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count search matches")
	}

	result := &SearchResult{
		Detainees: fromModels(rows),
		Total:     int(total),
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func trimCriteria(criteria SearchCriteria) SearchCriteria {
	criteria.Cedula = strings.TrimSpace(criteria.Cedula)
	criteria.Name = strings.TrimSpace(criteria.Name)
	criteria.State = strings.TrimSpace(criteria.State)
	criteria.Municipality = strings.TrimSpace(criteria.Municipality)
	criteria.Parish = strings.TrimSpace(criteria.Parish)
	return criteria
}

func describeCriteria(criteria SearchCriteria) string {
	parts := make([]string, 0, 5)
	appendPart := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+value)
		}
	}
	appendPart("cedula", criteria.Cedula)
	appendPart("name", criteria.Name)
	appendPart("state", criteria.State)
	appendPart("municipality", criteria.Municipality)
	appendPart("parish", criteria.Parish)
	return strings.Join(parts, " ")
}
