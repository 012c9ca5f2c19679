package types

import "strings"

const (
	// ActorRoleSystemAdmin represents site-wide administrators with unrestricted access.
	ActorRoleSystemAdmin = "system_admin"
	// ActorRoleOrgAdmin represents administrators scoped to an organization.
	ActorRoleOrgAdmin = "org_admin"
	// ActorRoleProjectAdmin represents project owners allowed to set shared defaults.
	ActorRoleProjectAdmin = "project_admin"
	// ActorRoleMember represents regular project members limited to personal defaults.
	ActorRoleMember = "member"
)

// RoleName normalizes the actor role for comparisons.
func (a ActorRef) RoleName() string {
	return normalizeRole(a.Type)
}

// IsRole reports whether the actor matches the provided role.
func (a ActorRef) IsRole(role string) bool {
	role = normalizeRole(role)
	if role == "" {
		return a.RoleName() == ""
	}
	return a.RoleName() == role
}

// IsSystemAdmin reports whether the actor is a global/system administrator.
func (a ActorRef) IsSystemAdmin() bool {
	return a.IsRole(ActorRoleSystemAdmin)
}

// CanManageProjectDefaults reports whether the actor may write project scoped
// default views.
func (a ActorRef) CanManageProjectDefaults() bool {
	switch a.RoleName() {
	case ActorRoleSystemAdmin, ActorRoleOrgAdmin, ActorRoleProjectAdmin:
		return true
	default:
		return false
	}
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
