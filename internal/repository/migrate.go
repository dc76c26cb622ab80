package repository

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	"github.com/taskloop/taskloop-go/internal/repository/migrations"
)

// RunMigrations applies the embedded goose migrations against the database.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("mysql"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
