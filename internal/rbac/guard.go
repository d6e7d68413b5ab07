package rbac

import (
	"context"
	"log/slog"
	"strings"

	"github.com/staffdesk/staffdesk/internal/shared"
)

// PermissionSource resolves effective permissions for an actor.
type PermissionSource interface {
	EffectivePermissions(ctx context.Context, userID int64) ([]string, error)
}

// Guard centralizes permission evaluation for the panel. It is the single
// boundary where evaluation faults are mapped to a denial: callers only ever
// see a Decision, never an error. An internal fault can therefore not grant
// access by accident, and a denial is indistinguishable from "not applicable".
type Guard struct {
	source PermissionSource
	logger *slog.Logger
}

// NewGuard constructs a Guard over the given permission source.
func NewGuard(source PermissionSource, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{source: source, logger: logger}
}

// Evaluate answers whether the current actor holds the named permission.
// Unknown names, anonymous requests, malformed actor state, source failures
// and panics inside the source all resolve to Denied.
func (g *Guard) Evaluate(ctx context.Context, permission string) (decision Decision) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Warn("guard evaluation panic", slog.Any("recovered", rec))
			decision = Denied
		}
	}()

	permission = strings.TrimSpace(permission)
	if !shared.KnownPermission(permission) {
		return Denied
	}
	if g.source == nil {
		return Denied
	}
	actorID, ok := shared.ActorID(ctx)
	if !ok {
		return Denied
	}
	granted, err := g.source.EffectivePermissions(ctx, actorID)
	if err != nil {
		g.logger.Debug("guard evaluation failed closed",
			slog.String("permission", permission), slog.Any("error", err))
		return Denied
	}
	for _, p := range granted {
		if p == permission {
			return Granted
		}
	}
	return Denied
}

// Check is the boolean form of Evaluate.
func (g *Guard) Check(ctx context.Context, permission string) bool {
	return g.Evaluate(ctx, permission) == Granted
}
