// AngelaMos | 2026
// migrations_test.go

package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSchema(t *testing.T) {
	files, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.Contains(t, files, "00001_create_users.sql")

	body, err := fs.ReadFile(FS, "00001_create_users.sql")
	require.NoError(t, err)

	schema := string(body)
	for _, want := range []string{
		"-- +goose Up",
		"-- +goose Down",
		"CONSTRAINT users_username_key UNIQUE (username)",
		"CONSTRAINT users_email_key UNIQUE (email)",
		"deleted_on  TIMESTAMPTZ,",
	} {
		assert.True(t, strings.Contains(schema, want), "schema missing %q", want)
	}
}

func TestUp_UsesEmbeddedDir(t *testing.T) {
	prev := gooseUp
	t.Cleanup(func() { gooseUp = prev })

	var gotDir string
	gooseUp = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, Up(context.Background(), nil))
	assert.Equal(t, ".", gotDir)
}

func TestDown_WrapsError(t *testing.T) {
	prev := gooseDown
	t.Cleanup(func() { gooseDown = prev })

	gooseDown = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("no migrations")
	}

	err := Down(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate down: no migrations")
}
