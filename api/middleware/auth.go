package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/registropol/registropol-backend/api/responses"
	"github.com/registropol/registropol-backend/pkg/db/models"
	pkgerrors "github.com/registropol/registropol-backend/pkg/errors"
	"github.com/registropol/registropol-backend/pkg/logger"
)

// SessionResolver verifies a token and returns its owning account.
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// TokenFromRequest extracts the bearer token from the Authorization
// header, empty when absent.
func TokenFromRequest(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

// Auth resolves the bearer token against the session store and seeds
// the request context with the authenticated account.
func Auth(resolver SessionResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			user, err := resolver.CurrentUser(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithUserID(r.Context(), user.ID)
			ctx = WithRole(ctx, user.Role)

			if logg != nil {
				ctx = logg.WithUserID(ctx, user.ID)
				ctx = logg.WithActorRole(ctx, string(user.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
