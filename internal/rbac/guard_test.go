package rbac

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/staffdesk/staffdesk/internal/shared"
)

type stubSource struct {
	permissions []string
	err         error
	panics      bool
}

func (s *stubSource) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	if s.panics {
		panic("source blew up")
	}
	return s.permissions, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func actorContext(id int64) context.Context {
	sess := &shared.Session{}
	sess.SetUser(id)
	return shared.ContextWithSession(context.Background(), sess)
}

func TestEvaluateGrantsHeldPermission(t *testing.T) {
	guard := NewGuard(&stubSource{permissions: []string{shared.PermViewUsers, shared.PermEditUsers}}, testLogger())

	require.Equal(t, Granted, guard.Evaluate(actorContext(1), shared.PermViewUsers))
	require.True(t, guard.Check(actorContext(1), shared.PermEditUsers))
}

func TestEvaluateDeniesMissingPermission(t *testing.T) {
	guard := NewGuard(&stubSource{permissions: []string{shared.PermViewUsers}}, testLogger())

	require.Equal(t, Denied, guard.Evaluate(actorContext(1), shared.PermDeleteUsers))
}

func TestEvaluateDeniesAnonymousActor(t *testing.T) {
	guard := NewGuard(&stubSource{permissions: shared.PermissionCatalog()}, testLogger())

	require.Equal(t, Denied, guard.Evaluate(context.Background(), shared.PermViewUsers))
}

func TestEvaluateDeniesUnknownPermissionName(t *testing.T) {
	guard := NewGuard(&stubSource{permissions: []string{"manage_everything"}}, testLogger())

	require.Equal(t, Denied, guard.Evaluate(actorContext(1), "manage_everything"))
	require.Equal(t, Denied, guard.Evaluate(actorContext(1), ""))
}

func TestEvaluateFailsClosedOnSourceError(t *testing.T) {
	guard := NewGuard(&stubSource{err: errors.New("connection reset")}, testLogger())

	require.Equal(t, Denied, guard.Evaluate(actorContext(1), shared.PermViewUsers))
}

func TestEvaluateFailsClosedOnPanic(t *testing.T) {
	guard := NewGuard(&stubSource{panics: true}, testLogger())

	require.NotPanics(t, func() {
		require.Equal(t, Denied, guard.Evaluate(actorContext(1), shared.PermViewUsers))
	})
}

func TestEvaluateFailsClosedWithoutSource(t *testing.T) {
	guard := NewGuard(nil, testLogger())

	require.Equal(t, Denied, guard.Evaluate(actorContext(1), shared.PermViewUsers))
}

func TestEvaluateTrimsPermissionName(t *testing.T) {
	guard := NewGuard(&stubSource{permissions: []string{shared.PermViewUsers}}, testLogger())

	require.Equal(t, Granted, guard.Evaluate(actorContext(1), "  view_users "))
}
