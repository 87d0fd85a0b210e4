// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/usermgmt/internal/core"
)

// Repository lookups never filter on deleted_on: uniqueness and state
// checks must see soft-deleted rows.
type Repository interface {
	FindAll(ctx context.Context, includeDeleted bool) ([]User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Insert(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int64) (int64, error)
	SoftDelete(ctx context.Context, id int64, at time.Time) (int64, error)
	Restore(ctx context.Context, id int64, at time.Time) (int64, error)
}

const (
	uniqueViolation = "23505"

	constraintUsername = "users_username_key"
	constraintEmail    = "users_email_key"

	FieldUsername = "username"
	FieldEmail    = "email"
)

// DuplicateError reports a unique constraint violation raised by the
// database at write time.
type DuplicateError struct {
	Field      string
	Constraint string
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("duplicate key on %s", e.Constraint)
	}
	return fmt.Sprintf("duplicate %s", e.Field)
}

func (e *DuplicateError) Unwrap() error {
	return core.ErrDuplicateKey
}

const userColumns = `id, username, first_name, last_name, email, phone,
		       created_on, updated_on, deleted_on`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) FindAll(
	ctx context.Context,
	includeDeleted bool,
) ([]User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users`
	if !includeDeleted {
		query += `
		WHERE deleted_on IS NULL`
	}
	query += `
		ORDER BY id`

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`

	return r.findOne(ctx, "get user", query, id)
}

func (r *repository) FindByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1`

	return r.findOne(ctx, "get user by username", query, username)
}

func (r *repository) FindByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`

	return r.findOne(ctx, "get user by email", query, email)
}

func (r *repository) findOne(
	ctx context.Context,
	op, query string,
	arg any,
) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (r *repository) Insert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (username, first_name, last_name, email, phone,
		                   created_on, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.GetContext(ctx, &user.ID, query,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.CreatedOn,
		user.UpdatedOn,
	)
	if err != nil {
		if dup := asDuplicateError(err); dup != nil {
			return fmt.Errorf("create user: %w", dup)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET username = $2, first_name = $3, last_name = $4, email = $5,
		    phone = $6, updated_on = $7
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.UpdatedOn,
	)
	if err != nil {
		if dup := asDuplicateError(err); dup != nil {
			return fmt.Errorf("update user: %w", dup)
		}
		return fmt.Errorf("update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) (int64, error) {
	query := `DELETE FROM users WHERE id = $1`

	return r.exec(ctx, "delete user", query, id)
}

func (r *repository) SoftDelete(
	ctx context.Context,
	id int64,
	at time.Time,
) (int64, error) {
	query := `
		UPDATE users
		SET deleted_on = $2, updated_on = $2
		WHERE id = $1 AND deleted_on IS NULL`

	return r.exec(ctx, "soft delete user", query, id, at)
}

func (r *repository) Restore(
	ctx context.Context,
	id int64,
	at time.Time,
) (int64, error) {
	query := `
		UPDATE users
		SET deleted_on = NULL, updated_on = $2
		WHERE id = $1 AND deleted_on IS NOT NULL`

	return r.exec(ctx, "restore user", query, id, at)
}

func (r *repository) exec(
	ctx context.Context,
	op, query string,
	args ...any,
) (int64, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return rows, nil
}

func asDuplicateError(err error) *DuplicateError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}

	dup := &DuplicateError{Constraint: pgErr.ConstraintName}
	switch pgErr.ConstraintName {
	case constraintUsername:
		dup.Field = FieldUsername
	case constraintEmail:
		dup.Field = FieldEmail
	}
	return dup
}
