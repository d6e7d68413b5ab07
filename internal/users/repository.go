package users

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

const listSelect = `
	SELECT u.id, u.name, u.email, u.password_hash, u.is_active, u.created_at, u.updated_at,
	       COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}')
	FROM users u
	LEFT JOIN user_roles ur ON ur.user_id = u.id
	LEFT JOIN roles r ON r.id = ur.role_id`

// List returns a page of users with their role names aggregated.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]User, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filter.Search != "" {
		argCount++
		ph := `$` + strconv.Itoa(argCount)
		where += ` AND (u.name ILIKE ` + ph + ` OR u.email ILIKE ` + ph + `)`
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Active != nil {
		// Unset flags count as active, so the active side includes NULL.
		if *filter.Active {
			where += ` AND COALESCE(u.is_active, TRUE)`
		} else {
			where += ` AND NOT COALESCE(u.is_active, TRUE)`
		}
	}
	if len(filter.Roles) > 0 {
		argCount++
		where += ` AND u.id IN (
			SELECT ur2.user_id FROM user_roles ur2
			JOIN roles r2 ON r2.id = ur2.role_id
			WHERE r2.name = ANY($` + strconv.Itoa(argCount) + `))`
		args = append(args, filter.Roles)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users u`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := listSelect + where + ` GROUP BY u.id ORDER BY ` + sortOrder(filter.SortBy, filter.SortDir)

	if filter.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filter.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filter.Page - 1) * filter.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, user)
	}
	return result, total, rows.Err()
}

// Get fetches a single user including roles and effective permissions.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, listSelect+` WHERE u.id = $1 GROUP BY u.id`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	perms, err := r.effectivePermissions(ctx, id)
	if err != nil {
		return User{}, err
	}
	user.Permissions = perms
	return user, nil
}

// FindByEmail fetches a user by its unique email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.pool.QueryRow(ctx, listSelect+` WHERE u.email = $1 GROUP BY u.id`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// Create inserts a new user. A unique-email conflict maps to
// ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, user User) (User, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`,
		user.Name, user.Email, user.PasswordHash, activeValue(user.IsActive), now).
		Scan(&user.ID)
	if err != nil {
		return User{}, mapUnique(err)
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	return user, nil
}

// Update persists name, email, password hash and active flag.
func (r *Repository) Update(ctx context.Context, user User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, is_active = $4, updated_at = $5
		WHERE id = $6`,
		user.Name, user.Email, user.PasswordHash, activeValue(user.IsActive), time.Now().UTC(), user.ID)
	if err != nil {
		return mapUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user row; role links cascade in the schema.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteMany removes the given user rows and reports how many went away.
func (r *Repository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SetRoles replaces the user's role set by name, delete-and-reattach in one
// transaction.
func (r *Repository) SetRoles(ctx context.Context, userID int64, roles []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, role := range roles {
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT $1, id FROM roles WHERE name = $2
			ON CONFLICT DO NOTHING`, userID, role); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repository) effectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT p.name
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN user_roles ur ON ur.role_id = rp.role_id
		WHERE ur.user_id = $1
		ORDER BY p.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		perms = append(perms, name)
	}
	return perms, rows.Err()
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	var active pgtype.Bool
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &active, &createdAt, &updatedAt, &user.Roles); err != nil {
		return User{}, err
	}
	if active.Valid {
		user.IsActive = &active.Bool
	}
	if createdAt.Valid {
		user.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	}
	return user, nil
}

func activeValue(flag *bool) bool {
	return flag == nil || *flag
}

func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}

// CountUsers returns the total number of user records.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	return total, err
}

// CountActiveUsers counts users that may sign in. Records with an
// unset flag count as active.
func (r *Repository) CountActiveUsers(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE COALESCE(is_active, TRUE)`).Scan(&total)
	return total, err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "email":
		return "u.email " + dir
	case "is_active":
		return "u.is_active " + dir + " NULLS LAST"
	case "created_at":
		return "u.created_at " + dir
	default:
		return "u.name " + dir
	}
}
