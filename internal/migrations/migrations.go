// AngelaMos | 2026
// migrations.go

// Package migrations embeds the SQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

const dialect = "pgx"

var setupOnce sync.Once

func setup() error {
	var err error
	setupOnce.Do(func() {
		goose.SetBaseFS(FS)
		err = goose.SetDialect(dialect)
	})
	return err
}

// Seams for tests; goose needs a live database.
var (
	gooseUp     = goose.UpContext
	gooseDown   = goose.DownContext
	gooseReset  = goose.ResetContext
	gooseStatus = goose.StatusContext
	gooseVer    = goose.GetDBVersionContext
)

func Up(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return fmt.Errorf("setup goose: %w", err)
	}
	if err := gooseUp(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func Down(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return fmt.Errorf("setup goose: %w", err)
	}
	if err := gooseDown(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

func Reset(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return fmt.Errorf("setup goose: %w", err)
	}
	if err := gooseReset(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate reset: %w", err)
	}
	return nil
}

func Status(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return fmt.Errorf("setup goose: %w", err)
	}
	if err := gooseStatus(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate status: %w", err)
	}
	return nil
}

func Version(ctx context.Context, db *sql.DB) (int64, error) {
	if err := setup(); err != nil {
		return 0, fmt.Errorf("setup goose: %w", err)
	}
	v, err := gooseVer(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("db version: %w", err)
	}
	return v, nil
}
