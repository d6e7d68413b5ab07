package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/staffdesk/staffdesk/internal/shared"
)

type memStore struct {
	permissions map[string]string
	roles       map[string]int64
	rolePerms   map[int64][]string
	users       map[string]int64
	userHashes  map[string]string
	userRoles   map[int64][]string
	nextID      int64
}

func newMemStore() *memStore {
	return &memStore{
		permissions: make(map[string]string),
		roles:       make(map[string]int64),
		rolePerms:   make(map[int64][]string),
		users:       make(map[string]int64),
		userHashes:  make(map[string]string),
		userRoles:   make(map[int64][]string),
	}
}

func (m *memStore) EnsurePermission(ctx context.Context, name, description string) error {
	m.permissions[name] = description
	return nil
}

func (m *memStore) EnsureRole(ctx context.Context, name, description string) (int64, error) {
	if id, ok := m.roles[name]; ok {
		return id, nil
	}
	m.nextID++
	m.roles[name] = m.nextID
	return m.nextID, nil
}

func (m *memStore) ReplaceRolePermissions(ctx context.Context, roleID int64, permissions []string) error {
	m.rolePerms[roleID] = append([]string(nil), permissions...)
	return nil
}

func (m *memStore) EnsureUser(ctx context.Context, name, email, passwordHash string) (int64, error) {
	if id, ok := m.users[email]; ok {
		return id, nil
	}
	m.nextID++
	m.users[email] = m.nextID
	m.userHashes[email] = passwordHash
	return m.nextID, nil
}

func (m *memStore) ReplaceUserRoles(ctx context.Context, userID int64, roles []string) error {
	m.userRoles[userID] = append([]string(nil), roles...)
	return nil
}

func TestRunProvisionsCatalogRolesAndAccounts(t *testing.T) {
	store := newMemStore()

	require.NoError(t, Run(context.Background(), store))

	for _, perm := range shared.PermissionCatalog() {
		require.Contains(t, store.permissions, perm)
	}

	adminRole, ok := store.roles[shared.RoleAdmin]
	require.True(t, ok)
	require.ElementsMatch(t, shared.PermissionCatalog(), store.rolePerms[adminRole])

	userRole, ok := store.roles[shared.RoleUser]
	require.True(t, ok)
	require.Empty(t, store.rolePerms[userRole])

	adminID, ok := store.users["admin@admin.com"]
	require.True(t, ok)
	require.Equal(t, []string{shared.RoleAdmin}, store.userRoles[adminID])

	demoID, ok := store.users["user@admin.com"]
	require.True(t, ok)
	require.NotEqual(t, adminID, demoID)
	require.Equal(t, []string{shared.RoleUser}, store.userRoles[demoID])
}

func TestRunSeedsWorkingAdminCredentials(t *testing.T) {
	store := newMemStore()

	require.NoError(t, Run(context.Background(), store))

	hash := store.userHashes["admin@admin.com"]
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("123456789")))
}

func TestRunIsIdempotent(t *testing.T) {
	store := newMemStore()

	require.NoError(t, Run(context.Background(), store))
	firstUsers := len(store.users)
	firstRoles := len(store.roles)

	require.NoError(t, Run(context.Background(), store))

	require.Equal(t, firstUsers, len(store.users))
	require.Equal(t, firstRoles, len(store.roles))

	adminRole := store.roles[shared.RoleAdmin]
	require.ElementsMatch(t, shared.PermissionCatalog(), store.rolePerms[adminRole])
}
