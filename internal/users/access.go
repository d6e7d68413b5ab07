package users

import (
	"context"

	"github.com/staffdesk/staffdesk/internal/rbac"
	"github.com/staffdesk/staffdesk/internal/shared"
)

// Access exposes the resource's access predicates. Every decision delegates
// to the guard; the only extra rule is the self-delete rejection.
type Access struct {
	guard *rbac.Guard
}

// NewAccess builds the predicate set over a guard.
func NewAccess(guard *rbac.Guard) Access {
	return Access{guard: guard}
}

// CanViewAny gates the listing and navigation into the section.
func (a Access) CanViewAny(ctx context.Context) bool {
	return a.guard.Check(ctx, shared.PermViewUsers)
}

// CanCreate gates the create form and submission.
func (a Access) CanCreate(ctx context.Context) bool {
	return a.guard.Check(ctx, shared.PermCreateUsers)
}

// CanView gates viewing a single record.
func (a Access) CanView(ctx context.Context) bool {
	return a.guard.Check(ctx, shared.PermViewUsers)
}

// CanEdit gates the edit form and submission.
func (a Access) CanEdit(ctx context.Context) bool {
	return a.guard.Check(ctx, shared.PermEditUsers)
}

// CanDelete gates deletion of the target record. The acting user can never
// delete themselves, whatever their permissions.
func (a Access) CanDelete(ctx context.Context, targetID int64) bool {
	if !a.guard.Check(ctx, shared.PermDeleteUsers) {
		return false
	}
	actorID, ok := shared.ActorID(ctx)
	if !ok {
		return false
	}
	return actorID != targetID
}

// Can answers a bare permission check, for schema-level action visibility.
func (a Access) Can(ctx context.Context, permission string) bool {
	return a.guard.Check(ctx, permission)
}

// CanManageRoles gates the role multi-select on the form.
func (a Access) CanManageRoles(ctx context.Context) bool {
	return a.guard.Check(ctx, shared.PermManagePermissions)
}

// Visible reports whether the section shows up in navigation at all.
// Same gate as the listing, so a denied actor never sees the section.
func (a Access) Visible(ctx context.Context) bool {
	return a.CanViewAny(ctx)
}
