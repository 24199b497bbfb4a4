// Package authz holds the role/capability policy as a single lookup
// table so the authorization matrix stays testable in isolation from
// the HTTP layer.
package authz

import "github.com/registropol/registropol-backend/pkg/enums"

// Capability names an operation class a role may be granted.
type Capability string

const (
	CapabilityDashboard   Capability = "dashboard"
	CapabilityRegister    Capability = "register_detainee"
	CapabilitySearch      Capability = "search_detainees"
	CapabilityManageUsers Capability = "manage_users"
)

var allCapabilities = []Capability{
	CapabilityDashboard,
	CapabilityRegister,
	CapabilitySearch,
	CapabilityManageUsers,
}

// Capabilities returns every known capability.
func Capabilities() []Capability {
	return append([]Capability(nil), allCapabilities...)
}

var grants = map[enums.Role]map[Capability]bool{
	enums.RoleAdmin: {
		CapabilityDashboard:   true,
		CapabilityRegister:    true,
		CapabilitySearch:      true,
		CapabilityManageUsers: true,
	},
	enums.RoleSupervisor: {
		CapabilityDashboard: true,
		CapabilityRegister:  true,
		CapabilitySearch:    true,
	},
	enums.RoleOfficer: {
		CapabilityRegister: true,
		CapabilitySearch:   true,
	},
	enums.RoleAgent: {
		CapabilitySearch: true,
	},
}

// Allows reports whether the role holds the capability. Unknown roles
// hold nothing.
func Allows(role enums.Role, cap Capability) bool {
	return grants[role][cap]
}

// LandingView maps a role to its default view after login. This is a
// presentation hint only; every endpoint re-checks Allows regardless of
// which view initiated the call.
func LandingView(role enums.Role) string {
	switch role {
	case enums.RoleAdmin, enums.RoleSupervisor:
		return "dashboard"
	case enums.RoleOfficer:
		return "registration"
	default:
		return "search"
	}
}
