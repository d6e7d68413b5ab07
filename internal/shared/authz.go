package shared

// Permission catalog for the user administration panel.
const (
	PermViewUsers         = "view_users"
	PermCreateUsers       = "create_users"
	PermEditUsers         = "edit_users"
	PermDeleteUsers       = "delete_users"
	PermManagePermissions = "manage_permissions"
)

// Built-in role names provisioned by the seeder.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// PermissionCatalog lists every permission this panel knows about.
// Names outside this list always evaluate to denied.
func PermissionCatalog() []string {
	return []string{
		PermViewUsers,
		PermCreateUsers,
		PermEditUsers,
		PermDeleteUsers,
		PermManagePermissions,
	}
}

// KnownPermission reports whether name is part of the fixed catalog.
func KnownPermission(name string) bool {
	for _, p := range PermissionCatalog() {
		if p == name {
			return true
		}
	}
	return false
}
