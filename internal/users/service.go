package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/registropol/registropol-backend/internal/audit"
	"github.com/registropol/registropol-backend/pkg/config"
	pkgdb "github.com/registropol/registropol-backend/pkg/db"
	"github.com/registropol/registropol-backend/pkg/db/models"
	"github.com/registropol/registropol-backend/pkg/enums"
	pkgerrors "github.com/registropol/registropol-backend/pkg/errors"
	"github.com/registropol/registropol-backend/pkg/pagination"
	"github.com/registropol/registropol-backend/pkg/security"
	"gorm.io/gorm"
)

// Service defines the behavior needed by the admin users controller.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*ListResult, error)
	Search(ctx context.Context, query SearchQuery) ([]UserDTO, error)
	Get(ctx context.Context, id uint) (*UserDTO, error)
	Create(ctx context.Context, actorID uint, req CreateUserRequest) (*UserDTO, error)
	Update(ctx context.Context, actorID uint, id uint, req UpdateUserRequest) (*UserDTO, error)
	Suspend(ctx context.Context, actorID uint, id uint, req SuspendUserRequest) (*UserDTO, error)
	Reactivate(ctx context.Context, actorID uint, id uint) (*UserDTO, error)
	Delete(ctx context.Context, actorID uint, id uint) error
}

type repository interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	ReleaseSessionByUser(ctx context.Context, id uint) error
	Save(ctx context.Context, user *models.User) error
	List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.User, *pagination.Cursor, error)
	Search(ctx context.Context, query SearchQuery) ([]models.User, error)
}

type sessionDestroyer interface {
	Destroy(ctx context.Context, token string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditor interface {
	Activity(ctx context.Context, userID uint, action string, description string)
}

type service struct {
	repo        repository
	tx          txRunner
	sessions    sessionDestroyer
	audit       auditor
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo           repository
	Tx             txRunner
	SessionManager sessionDestroyer
	Audit          auditor
	PasswordConfig config.PasswordConfig
}

// NewService constructs a user directory service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &service{
		repo:        params.Repo,
		tx:          params.Tx,
		sessions:    params.SessionManager,
		audit:       params.Audit,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}

	result := &ListResult{Users: fromModels(rows)}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) Search(ctx context.Context, query SearchQuery) ([]UserDTO, error) {
	query.Term = strings.TrimSpace(query.Term)
	query.Role = strings.TrimSpace(query.Role)
	query.Status = strings.TrimSpace(query.Status)
	if query.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one search filter is required")
	}
	if query.Role != "" {
		if _, err := enums.ParseRole(query.Role); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
		}
	}
	if query.Status != "" {
		if _, err := enums.ParseUserStatus(query.Status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
	}

	rows, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search users")
	}
	return fromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id uint) (*UserDTO, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) Create(ctx context.Context, actorID uint, req CreateUserRequest) (*UserDTO, error) {
	role := enums.RoleOfficer
	if req.Role != "" {
		parsed, err := enums.ParseRole(req.Role)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
		}
		role = parsed
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Role:         role,
		Status:       enums.UserStatusActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	s.audit.Activity(ctx, actorID, audit.ActionUserCreated, fmt.Sprintf("created user %s", user.Username))
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, actorID uint, id uint, req UpdateUserRequest) (*UserDTO, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.FirstName != nil {
		user.FirstName = req.FirstName
	}
	if req.LastName != nil {
		user.LastName = req.LastName
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Role != nil {
		parsed, err := enums.ParseRole(*req.Role)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
		}
		user.Role = parsed
	}
	if req.Status != nil {
		parsed, err := enums.ParseUserStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		user.Status = parsed
		if parsed == enums.UserStatusActive {
			user.SuspendedUntil = nil
			user.SuspendedReason = nil
		}
	}

	if err := s.repo.Save(ctx, user); err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}

	s.audit.Activity(ctx, actorID, audit.ActionUserUpdated, fmt.Sprintf("updated user %s", user.Username))
	return FromModel(user), nil
}

func (s *service) Suspend(ctx context.Context, actorID uint, id uint, req SuspendUserRequest) (*UserDTO, error) {
	if actorID == id {
		return nil, pkgerrors.New(pkgerrors.CodeSelfAction, "cannot suspend own account")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "suspension reason is required")
	}
	if req.Until.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "suspension end date is required")
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	until := req.Until
	reason := strings.TrimSpace(req.Reason)
	user.Status = enums.UserStatusSuspended
	user.SuspendedUntil = &until
	user.SuspendedReason = &reason

	// Suspension revokes the live session immediately.
	if err := s.revokeSession(ctx, user); err != nil {
		return nil, err
	}
	user.ActiveSessionID = nil

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "suspend user")
	}

	s.audit.Activity(ctx, actorID, audit.ActionUserSuspended, fmt.Sprintf("suspended user %s: %s", user.Username, reason))
	return FromModel(user), nil
}

func (s *service) Reactivate(ctx context.Context, actorID uint, id uint) (*UserDTO, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Status = enums.UserStatusActive
	user.SuspendedUntil = nil
	user.SuspendedReason = nil

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reactivate user")
	}

	s.audit.Activity(ctx, actorID, audit.ActionUserReactivate, fmt.Sprintf("reactivated user %s", user.Username))
	return FromModel(user), nil
}

func (s *service) Delete(ctx context.Context, actorID uint, id uint) error {
	if actorID == id {
		return pkgerrors.New(pkgerrors.CodeSelfAction, "cannot delete own account")
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}

	if err := s.revokeSession(ctx, user); err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return NewRepository(tx).DeleteCascade(ctx, id)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}

	s.audit.Activity(ctx, actorID, audit.ActionUserDeleted, fmt.Sprintf("deleted user %s", user.Username))
	return nil
}

func (s *service) findUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return user, nil
}

func (s *service) revokeSession(ctx context.Context, user *models.User) error {
	if user.ActiveSessionID == nil {
		return nil
	}
	if err := s.sessions.Destroy(ctx, *user.ActiveSessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	if err := s.repo.ReleaseSessionByUser(ctx, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release session slot")
	}
	return nil
}
