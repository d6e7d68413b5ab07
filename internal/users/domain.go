package users

import (
	"time"

	"github.com/staffdesk/staffdesk/internal/shared"
)

// User represents a managed account. PasswordHash never leaves the service
// layer; DTOs omit it entirely.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	// IsActive is tri-state: nil means the flag was never set and the
	// account is treated as active (permissive default).
	IsActive    *bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Roles       []string
	Permissions []string
}

// HasRole reports whether the user carries the named role.
func (u User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// HasPermission reports whether the user's effective permissions include name.
func (u User) HasPermission(name string) bool {
	for _, p := range u.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.HasRole(shared.RoleAdmin)
}

// IsUser reports whether the user carries the regular user role.
func (u User) IsUser() bool {
	return u.HasRole(shared.RoleUser)
}

// CanAccessPanel allows panel access unless the account was explicitly
// deactivated. An unset flag counts as active.
func (u User) CanAccessPanel() bool {
	return u.IsActive == nil || *u.IsActive
}

// CanManageUsers reports whether the user may enter the user management area.
func (u User) CanManageUsers() bool {
	return u.HasPermission(shared.PermViewUsers)
}

// Active reports the effective active flag with the permissive default applied.
func (u User) Active() bool {
	return u.CanAccessPanel()
}

// ListFilter narrows and orders a user listing. Active covers the
// active/inactive scopes as a tri-state: nil selects both.
type ListFilter struct {
	Search  string
	Active  *bool
	Roles   []string
	SortBy  string
	SortDir string
	Page    int
	Limit   int
}
