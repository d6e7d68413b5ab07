package seed

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore executes seed operations against Postgres inside a single
// transaction.
type PGStore struct {
	tx pgx.Tx
}

// SeedDatabase runs the full seed in one transaction against pool.
func SeedDatabase(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := Run(ctx, &PGStore{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// EnsurePermission upserts a permission by name.
func (s *PGStore) EnsurePermission(ctx context.Context, name, description string) error {
	_, err := s.tx.Exec(ctx, `
		INSERT INTO permissions (name, description)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description`, name, description)
	return err
}

// EnsureRole upserts a role by name and returns its id.
func (s *PGStore) EnsureRole(ctx context.Context, name, description string) (int64, error) {
	var roleID int64
	err := s.tx.QueryRow(ctx, `
		INSERT INTO roles (name, description)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description, updated_at = NOW()
		RETURNING id`, name, description).Scan(&roleID)
	return roleID, err
}

// ReplaceRolePermissions rewrites the grant set for a role.
func (s *PGStore) ReplaceRolePermissions(ctx context.Context, roleID int64, permissions []string) error {
	if _, err := s.tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return err
	}
	for _, name := range permissions {
		if _, err := s.tx.Exec(ctx, `
			INSERT INTO role_permissions (role_id, permission_id)
			SELECT $1, id FROM permissions WHERE name = $2
			ON CONFLICT DO NOTHING`, roleID, name); err != nil {
			return err
		}
	}
	return nil
}

// EnsureUser inserts the account when missing and returns its id. An
// existing account keeps its password.
func (s *PGStore) EnsureUser(ctx context.Context, name, email, passwordHash string) (int64, error) {
	var userID int64
	err := s.tx.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
		RETURNING id`, name, email, passwordHash).Scan(&userID)
	return userID, err
}

// ReplaceUserRoles rewrites the role memberships for a user.
func (s *PGStore) ReplaceUserRoles(ctx context.Context, userID int64, roles []string) error {
	if _, err := s.tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, name := range roles {
		if _, err := s.tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT $1, id FROM roles WHERE name = $2
			ON CONFLICT DO NOTHING`, userID, name); err != nil {
			return err
		}
	}
	return nil
}
