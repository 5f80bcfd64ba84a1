package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saasbase/saasbase/pkg/pg"
)

// Repository is the persistence surface the handlers and the auth service
// depend on.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]User, error)
}

// PgRepository stores users in Postgres. It always queries through
// pg.QuerierFromContext, so requests run on their tenant-bound session and
// RLS filters every statement; tenant_id never appears in a WHERE clause
// here.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a repository over the pool.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const userColumns = `id, tenant_id, name, email, age, password_hash, roles, enabled, created_at, updated_at`

// Create inserts the user. The tenant_id column is filled by the database
// from the session tenant, and the returned row reports the assigned values.
func (r *PgRepository) Create(ctx context.Context, u *User) error {
	q := pg.QuerierFromContext(ctx, r.pool)

	row := q.QueryRow(ctx, `
		INSERT INTO users (id, name, email, age, password_hash, roles, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		u.ID, u.Name, u.Email, u.Age, u.PasswordHash, roleStrings(u.Roles), u.Enabled,
	)
	if err := scanUser(row, u); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	q := pg.QuerierFromContext(ctx, r.pool)

	var u User
	row := q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err := scanUser(row, &u); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

func (r *PgRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	q := pg.QuerierFromContext(ctx, r.pool)

	var u User
	row := q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err := scanUser(row, &u); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (r *PgRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := pg.QuerierFromContext(ctx, r.pool)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

// Update rewrites the mutable columns. The email keeps its composite
// uniqueness with the tenant, and tenant_id is immutable.
func (r *PgRepository) Update(ctx context.Context, u *User) error {
	q := pg.QuerierFromContext(ctx, r.pool)

	row := q.QueryRow(ctx, `
		UPDATE users
		SET name = $2, email = $3, age = $4, password_hash = $5, roles = $6,
		    enabled = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		u.ID, u.Name, u.Email, u.Age, u.PasswordHash, roleStrings(u.Roles), u.Enabled,
	)
	if err := scanUser(row, u); err != nil {
		if pg.IsNotFoundError(err) {
			return ErrNotFound
		}
		if pg.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q := pg.QuerierFromContext(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgRepository) List(ctx context.Context, limit, offset int) ([]User, error) {
	q := pg.QuerierFromContext(ctx, r.pool)

	rows, err := q.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner, u *User) error {
	var roles []string
	err := row.Scan(&u.ID, &u.TenantID, &u.Name, &u.Email, &u.Age,
		&u.PasswordHash, &roles, &u.Enabled, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return err
	}
	u.Roles = ParseRoles(roles)
	return nil
}

func roleStrings(roles []Role) []string {
	return RoleNames(roles)
}
