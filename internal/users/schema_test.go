package users

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/staffdesk/staffdesk/internal/shared"
)

func fieldByKey(t *testing.T, key string) Field {
	t.Helper()
	for _, f := range FormFields() {
		if f.Key == key {
			return f
		}
	}
	t.Fatalf("field %s not found", key)
	return Field{}
}

func columnByKey(t *testing.T, key string) Column {
	t.Helper()
	for _, c := range Columns() {
		if c.Key == key {
			return c
		}
	}
	t.Fatalf("column %s not found", key)
	return Column{}
}

func TestPasswordRulesDifferBetweenCreateAndEdit(t *testing.T) {
	password := fieldByKey(t, "password")

	require.Equal(t, "required,min=8", password.CreateRules)
	require.Equal(t, "omitempty,min=8", password.EditRules)
	require.True(t, password.WriteOnly)
}

func TestRolesFieldIsGatedBehindManagePermissions(t *testing.T) {
	roles := fieldByKey(t, "roles")

	require.Equal(t, FieldMultiSelect, roles.Kind)
	require.Equal(t, shared.PermManagePermissions, roles.VisibleWith)
	require.Equal(t, "roles", roles.OptionsFrom)
}

func TestActiveToggleDefaultsTrue(t *testing.T) {
	active := fieldByKey(t, "is_active")

	require.Equal(t, FieldToggle, active.Kind)
	require.Equal(t, true, active.Default)
}

func TestRoleBadgeColors(t *testing.T) {
	roles := columnByKey(t, "roles")

	require.Equal(t, "danger", roles.BadgeColors[shared.RoleAdmin])
	require.Equal(t, "success", roles.BadgeColors[shared.RoleUser])
	require.Equal(t, "gray", roles.BadgeOther)
}

func TestCreatedAtColumnHiddenWithFormat(t *testing.T) {
	created := columnByKey(t, "created_at")

	require.True(t, created.Hidden)
	require.Equal(t, "02/01/2006 15:04", created.Format)
	require.True(t, created.Sortable)
}

func TestDeleteActionsDenySelf(t *testing.T) {
	for _, a := range RowActions() {
		if a.Key == "delete" {
			require.True(t, a.DeniesSelf)
		}
	}
	require.Len(t, BulkActions(), 1)
	require.True(t, BulkActions()[0].DeniesSelf)
}

func TestSortColumnWhitelistsSortableColumns(t *testing.T) {
	require.Equal(t, "email", SortColumn("email"))
	require.Equal(t, "created_at", SortColumn("created_at"))
	require.Equal(t, "name", SortColumn("password_hash"))
	require.Equal(t, "name", SortColumn("roles"))
	require.Equal(t, "name", SortColumn(""))
}
