package middleware

import (
	"net/http"

	"github.com/registropol/registropol-backend/api/responses"
	"github.com/registropol/registropol-backend/pkg/authz"
	pkgerrors "github.com/registropol/registropol-backend/pkg/errors"
	"github.com/registropol/registropol-backend/pkg/logger"
)

// RequireCapability gates the route on the policy table. The role comes
// from the auth middleware, so this must run after Auth.
func RequireCapability(cap authz.Capability, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authz.Allows(RoleFromContext(r.Context()), cap) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
