// Package seed provisions the baseline roles, permissions, and accounts
// the panel needs on a fresh database. Running it repeatedly converges
// on the same state.
package seed

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/staffdesk/staffdesk/internal/shared"
)

// Store abstracts the persistence operations the seeder performs.
type Store interface {
	EnsurePermission(ctx context.Context, name, description string) error
	EnsureRole(ctx context.Context, name, description string) (int64, error)
	ReplaceRolePermissions(ctx context.Context, roleID int64, permissions []string) error
	EnsureUser(ctx context.Context, name, email, passwordHash string) (int64, error)
	ReplaceUserRoles(ctx context.Context, userID int64, roles []string) error
}

type permissionSpec struct {
	name        string
	description string
}

type roleSpec struct {
	name        string
	description string
	permissions []string
}

type userSpec struct {
	name     string
	email    string
	password string
	roles    []string
}

func permissions() []permissionSpec {
	return []permissionSpec{
		{shared.PermViewUsers, "View user accounts"},
		{shared.PermCreateUsers, "Create user accounts"},
		{shared.PermEditUsers, "Edit user accounts"},
		{shared.PermDeleteUsers, "Delete user accounts"},
		{shared.PermManagePermissions, "Manage roles and permission grants"},
	}
}

func roles() []roleSpec {
	return []roleSpec{
		{shared.RoleAdmin, "Full access to the administration panel", shared.PermissionCatalog()},
		// The user role carries no grants. Access comes from role
		// checks on the account itself, not from permissions.
		{shared.RoleUser, "Regular account without panel grants", nil},
	}
}

func users() []userSpec {
	return []userSpec{
		{"Administrator", "admin@admin.com", "123456789", []string{shared.RoleAdmin}},
		{"Demo User", "user@admin.com", "123456789", []string{shared.RoleUser}},
	}
}

// Run seeds permissions, roles, grants, and the default accounts.
func Run(ctx context.Context, store Store) error {
	for _, perm := range permissions() {
		if err := store.EnsurePermission(ctx, perm.name, perm.description); err != nil {
			return fmt.Errorf("ensure permission %s: %w", perm.name, err)
		}
	}

	for _, role := range roles() {
		roleID, err := store.EnsureRole(ctx, role.name, role.description)
		if err != nil {
			return fmt.Errorf("ensure role %s: %w", role.name, err)
		}
		if err := store.ReplaceRolePermissions(ctx, roleID, role.permissions); err != nil {
			return fmt.Errorf("attach permissions to %s: %w", role.name, err)
		}
	}

	for _, account := range users() {
		hash, err := bcrypt.GenerateFromPassword([]byte(account.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", account.email, err)
		}
		userID, err := store.EnsureUser(ctx, account.name, account.email, string(hash))
		if err != nil {
			return fmt.Errorf("ensure user %s: %w", account.email, err)
		}
		if err := store.ReplaceUserRoles(ctx, userID, account.roles); err != nil {
			return fmt.Errorf("attach roles to %s: %w", account.email, err)
		}
	}

	return nil
}
