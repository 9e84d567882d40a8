package database

import (
	"context"
	"fmt"
	"log/slog"

	"dogpark/internal/config"
	"dogpark/internal/middleware"

	"gorm.io/gorm"
)

// TableStatus reports whether a model's table exists.
type TableStatus struct {
	Table  string
	Exists bool
}

// ApplySchema auto-migrates every persistent model outside production.
// Production schemas are changed explicitly through cmd/migrate.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if cfg.IsProduction() {
		return nil
	}
	return Migrate(ctx, db)
}

// Migrate runs GORM AutoMigrate for PersistentModels.
func Migrate(ctx context.Context, db *gorm.DB) error {
	middleware.Logger.InfoContext(ctx, "Running GORM AutoMigrate", slog.String("driver", db.Dialector.Name()))
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SchemaStatus lists the table of each persistent model and whether it exists.
func SchemaStatus(ctx context.Context, db *gorm.DB) ([]TableStatus, error) {
	out := make([]TableStatus, 0, len(PersistentModels()))
	for _, model := range PersistentModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		out = append(out, TableStatus{
			Table:  stmt.Schema.Table,
			Exists: db.WithContext(ctx).Migrator().HasTable(model),
		})
	}
	return out, nil
}
