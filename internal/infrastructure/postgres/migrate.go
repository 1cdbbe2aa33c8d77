package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embedMigrations embed.FS

// ErrSchemaBehind means the database has not been migrated to the version
// this binary was built with.
var ErrSchemaBehind = errors.New("database schema is behind")

func init() {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		panic(err)
	}
}

// Migrate applies every pending migration from the embedded migrations dir.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// CheckSchema compares the applied schema version with the newest embedded
// migration. Readiness uses it so a replica started against an unmigrated
// database is not put into rotation.
func CheckSchema(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	want, err := latestVersion()
	if err != nil {
		return err
	}
	if current < want {
		return fmt.Errorf("%w: at %d, want %d", ErrSchemaBehind, current, want)
	}
	return nil
}

func latestVersion() (int64, error) {
	ms, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
	if err != nil {
		return 0, fmt.Errorf("collect migrations: %w", err)
	}
	last, err := ms.Last()
	if err != nil {
		return 0, fmt.Errorf("last migration: %w", err)
	}
	return last.Version, nil
}
