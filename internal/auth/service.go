package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/registropol/registropol-backend/internal/audit"
	"github.com/registropol/registropol-backend/internal/users"
	"github.com/registropol/registropol-backend/pkg/authz"
	"github.com/registropol/registropol-backend/pkg/db/models"
	"github.com/registropol/registropol-backend/pkg/enums"
	pkgerrors "github.com/registropol/registropol-backend/pkg/errors"
	"github.com/registropol/registropol-backend/pkg/security"
	"github.com/registropol/registropol-backend/pkg/session"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller and the
// authentication middleware.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

type userRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	ClaimSession(ctx context.Context, id uint, token string) (bool, error)
	ReleaseSessionByToken(ctx context.Context, token string) error
	ReleaseSessionByUser(ctx context.Context, id uint) error
}

type sessionManager interface {
	Save(ctx context.Context, token string, userID uint) error
	Resolve(ctx context.Context, token string) (uint, error)
	Destroy(ctx context.Context, token string) error
	TTL() time.Duration
}

type auditor interface {
	Activity(ctx context.Context, userID uint, action string, description string)
}

type service struct {
	users   userRepository
	session sessionManager
	audit   auditor
	now     func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	Audit          auditor
	Now            func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:   params.UserRepo,
		session: params.SessionManager,
		audit:   params.Audit,
		now:     now,
	}, nil
}

// Login authenticates the credentials and claims the user's single
// session slot. A live session on the account fails the attempt.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := session.NewToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate session token")
	}

	claimed, err := s.users.ClaimSession(ctx, user.ID, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim session slot")
	}
	if !claimed {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "an active session already exists for this account")
	}

	if err := s.session.Save(ctx, token, user.ID); err != nil {
		// Roll the claim back so the account is not locked out.
		if releaseErr := s.users.ReleaseSessionByToken(ctx, token); releaseErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, releaseErr, "release session slot")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	s.audit.Activity(ctx, user.ID, audit.ActionLogin, "")

	return &LoginResponse{
		Token:       token,
		ExpiresAt:   s.now().UTC().Add(s.session.TTL()),
		LandingView: authz.LandingView(user.Role),
		User:        users.FromModel(user),
	}, nil
}

// Logout destroys the session. Unknown tokens succeed silently so the
// operation stays idempotent.
func (s *service) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}

	userID, err := s.session.Resolve(ctx, token)
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve session")
	}

	if err := s.session.Destroy(ctx, token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "destroy session")
	}
	if err := s.users.ReleaseSessionByToken(ctx, token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release session slot")
	}

	if userID != 0 {
		s.audit.Activity(ctx, userID, audit.ActionLogout, "")
	}
	return nil
}

// CurrentUser resolves the token to its owning account and re-checks
// account state on every call, so a suspension takes effect immediately.
func (s *service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.session.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired or revoked")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve session")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired or revoked")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	if user.ActiveSessionID == nil || *user.ActiveSessionID != token {
		// Stale store entry, the DB slot is authoritative.
		_ = s.session.Destroy(ctx, token)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired or revoked")
	}

	if user.Status == enums.UserStatusSuspended {
		_ = s.session.Destroy(ctx, token)
		_ = s.users.ReleaseSessionByUser(ctx, user.ID)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account suspended")
	}

	return user, nil
}

func (s *service) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	input := strings.TrimSpace(username)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByUsername(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if user.Status == enums.UserStatusSuspended {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account suspended")
	}
	return user, nil
}
