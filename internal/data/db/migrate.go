package db

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/graduation-masterpiece/demo-repository/internal/data/db/migrations"
	types "github.com/graduation-masterpiece/demo-repository/internal/domain"
)

// Migrate brings the schema up to date. Postgres runs the embedded goose
// migrations, which own the cascading foreign keys; sqlite is auto-migrated
// from the gorm models.
func Migrate(ctx context.Context, db *gorm.DB, driver string) error {
	if driver == DriverSQLite {
		return AutoMigrateAll(db)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}
