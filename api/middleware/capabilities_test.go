package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/registropol/registropol-backend/pkg/authz"
	"github.com/registropol/registropol-backend/pkg/enums"
)

func TestRequireCapability(t *testing.T) {
	cases := []struct {
		name       string
		role       enums.Role
		capability authz.Capability
		wantStatus int
	}{
		{name: "admin manages users", role: enums.RoleAdmin, capability: authz.CapabilityManageUsers, wantStatus: http.StatusOK},
		{name: "supervisor sees dashboard", role: enums.RoleSupervisor, capability: authz.CapabilityDashboard, wantStatus: http.StatusOK},
		{name: "officer blocked from dashboard", role: enums.RoleOfficer, capability: authz.CapabilityDashboard, wantStatus: http.StatusForbidden},
		{name: "agent blocked from registration", role: enums.RoleAgent, capability: authz.CapabilityRegister, wantStatus: http.StatusForbidden},
		{name: "agent may search", role: enums.RoleAgent, capability: authz.CapabilitySearch, wantStatus: http.StatusOK},
		{name: "supervisor blocked from user management", role: enums.RoleSupervisor, capability: authz.CapabilityManageUsers, wantStatus: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireCapability(tc.capability, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithRole(req.Context(), tc.role))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestRequireCapabilityWithoutRole(t *testing.T) {
	handler := RequireCapability(authz.CapabilitySearch, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for missing role, got %d", rec.Code)
	}
}
