// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/usermgmt/internal/core"
)

var userRowColumns = []string{
	"id", "username", "first_name", "last_name", "email", "phone",
	"created_on", "updated_on", "deleted_on",
}

func newRepoWithMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return NewRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestRepository_FindAll(t *testing.T) {
	ts := time.Date(2026, 3, 19, 9, 30, 0, 0, time.UTC)

	t.Run("active only", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		rows := sqlmock.NewRows(userRowColumns).
			AddRow(1, "alice", nil, nil, "alice@example.com", nil, ts, ts, nil)
		mock.ExpectQuery(`(?s)SELECT .+ FROM users\s+WHERE deleted_on IS NULL\s+ORDER BY id`).
			WillReturnRows(rows)

		users, err := repo.FindAll(context.Background(), false)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "alice", users[0].Username)
		assert.Nil(t, users[0].FirstName)
	})

	t.Run("include deleted has no filter", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		rows := sqlmock.NewRows(userRowColumns).
			AddRow(1, "alice", "Alice", nil, "alice@example.com", nil, ts, ts, nil).
			AddRow(2, "bob", nil, nil, "bob@example.com", "555", ts, ts, ts)
		mock.ExpectQuery(`(?s)SELECT .+ FROM users\s+ORDER BY id`).
			WillReturnRows(rows)

		users, err := repo.FindAll(context.Background(), true)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "Alice", *users[0].FirstName)
		assert.True(t, users[1].IsDeleted())
		assert.Equal(t, "555", *users[1].Phone)
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		mock.ExpectQuery(`(?s)SELECT .+ FROM users`).
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		users, err := repo.FindAll(context.Background(), false)
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})
}

func TestRepository_FindByID(t *testing.T) {
	ts := time.Date(2026, 3, 19, 9, 30, 0, 0, time.UTC)

	t.Run("found, including soft deleted", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		rows := sqlmock.NewRows(userRowColumns).
			AddRow(7, "carol", nil, nil, "carol@example.com", nil, ts, ts, ts)
		mock.ExpectQuery(`(?s)FROM users\s+WHERE id = \$1$`).
			WithArgs(int64(7)).
			WillReturnRows(rows)

		u, err := repo.FindByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), u.ID)
		assert.True(t, u.IsDeleted())
	})

	t.Run("missing maps to ErrNotFound", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		mock.ExpectQuery(`(?s)FROM users\s+WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByID(context.Background(), 99)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		mock.ExpectQuery(`(?s)FROM users\s+WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnError(errors.New("db down"))

		_, err := repo.FindByID(context.Background(), 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, core.ErrNotFound)
		assert.Contains(t, err.Error(), "get user: db down")
	})
}

func TestRepository_FindByUniqueFields(t *testing.T) {
	ts := time.Date(2026, 3, 19, 9, 30, 0, 0, time.UTC)

	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM users\s+WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(1, "alice", nil, nil, "alice@example.com", nil, ts, ts, nil))
	mock.ExpectQuery(`(?s)FROM users\s+WHERE email = \$1`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	_, err = repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_Insert(t *testing.T) {
	ts := time.Date(2026, 3, 19, 9, 30, 0, 0, time.UTC)
	newUser := func() *User {
		return &User{
			Username:  "alice",
			Email:     "alice@example.com",
			CreatedOn: ts,
			UpdatedOn: ts,
		}
	}

	t.Run("assigns id", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		mock.ExpectQuery(`(?s)INSERT INTO users .+ RETURNING id`).
			WithArgs("alice", nil, nil, "alice@example.com", nil, ts, ts).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

		u := newUser()
		require.NoError(t, repo.Insert(context.Background(), u))
		assert.Equal(t, int64(42), u.ID)
	})

	tests := []struct {
		name       string
		constraint string
		wantField  string
	}{
		{"username constraint", constraintUsername, FieldUsername},
		{"email constraint", constraintEmail, FieldEmail},
		{"unknown constraint", "users_pkey", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			mock.ExpectQuery(`(?s)INSERT INTO users`).
				WillReturnError(&pgconn.PgError{
					Code:           "23505",
					ConstraintName: tt.constraint,
				})

			err := repo.Insert(context.Background(), newUser())
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrDuplicateKey)

			var dup *DuplicateError
			require.ErrorAs(t, err, &dup)
			assert.Equal(t, tt.wantField, dup.Field)
		})
	}

	t.Run("other pg errors are not duplicates", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		mock.ExpectQuery(`(?s)INSERT INTO users`).
			WillReturnError(&pgconn.PgError{Code: "23502"})

		err := repo.Insert(context.Background(), newUser())
		require.Error(t, err)
		assert.NotErrorIs(t, err, core.ErrDuplicateKey)
	})
}

func TestRepository_Update(t *testing.T) {
	ts := time.Date(2026, 3, 19, 9, 30, 0, 0, time.UTC)
	u := &User{
		ID:        3,
		Username:  "dave",
		Email:     "dave@example.com",
		Phone:     stringPtr("555"),
		CreatedOn: ts,
		UpdatedOn: ts.Add(time.Minute),
	}

	t.Run("success", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		mock.ExpectExec(`(?s)UPDATE users\s+SET username = \$2.+WHERE id = \$1`).
			WithArgs(int64(3), "dave", nil, nil, "dave@example.com", stringPtr("555"), ts.Add(time.Minute)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), u))
	})

	t.Run("no rows means not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		mock.ExpectExec(`(?s)UPDATE users`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), u)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		mock.ExpectExec(`(?s)UPDATE users`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: constraintEmail})

		err := repo.Update(context.Background(), u)
		var dup *DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, FieldEmail, dup.Field)
	})
}

func TestRepository_DeleteAndStateTransitions(t *testing.T) {
	at := time.Date(2026, 3, 20, 8, 0, 0, 0, time.UTC)

	t.Run("physical delete", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		rows, err := repo.Delete(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("soft delete only touches active rows", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		mock.ExpectExec(`(?s)SET deleted_on = \$2, updated_on = \$2\s+WHERE id = \$1 AND deleted_on IS NULL`).
			WithArgs(int64(5), at).
			WillReturnResult(sqlmock.NewResult(0, 0))

		rows, err := repo.SoftDelete(context.Background(), 5, at)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})

	t.Run("restore only touches deleted rows", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		mock.ExpectExec(`(?s)SET deleted_on = NULL, updated_on = \$2\s+WHERE id = \$1 AND deleted_on IS NOT NULL`).
			WithArgs(int64(5), at).
			WillReturnResult(sqlmock.NewResult(0, 1))

		rows, err := repo.Restore(context.Background(), 5, at)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("exec error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		mock.ExpectExec(`DELETE FROM users`).
			WillReturnError(errors.New("db down"))

		_, err := repo.Delete(context.Background(), 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "delete user: db down")
	})
}
