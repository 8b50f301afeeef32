package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/mustafa2080/tourism-API/internal/db/migrations"
)

// Tables lists every table the initial migration creates, in dependency order.
var Tables = []string{"users", "trips", "bookings", "refresh_tokens", "password_resets", "audit_logs", "uploads"}

// EnsureSchema applies pending goose migrations from the embedded set.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if err := useEmbeddedMigrations(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logrus.WithField("version", version).Info("Database schema ensured")
	return nil
}

// Migrations lists the embedded migrations in version order.
func Migrations() (goose.Migrations, error) {
	if err := useEmbeddedMigrations(); err != nil {
		return nil, err
	}
	return goose.CollectMigrations(".", 0, goose.MaxVersion)
}

func useEmbeddedMigrations() error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(logrus.StandardLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return nil
}

// HasTable reports whether table exists in the current schema.
func HasTable(ctx context.Context, q Querier, table string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_name = $1
		LIMIT 1
	`, table).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}
