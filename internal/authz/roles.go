package authz

const (
	RoleFieldStaff    = 10
	RoleOfficeManager = 20
	RoleAudit         = 30
	RoleSuperAdmin    = 50
)

func IsElevated(roleID int) bool {
	return roleID == RoleOfficeManager || roleID == RoleSuperAdmin
}

func IsReadOnly(roleID int) bool {
	return roleID == RoleAudit
}

// CrossesTenant reports whether the role sees every office, not just its own.
func CrossesTenant(roleID int) bool {
	return roleID == RoleSuperAdmin || roleID == RoleAudit
}
