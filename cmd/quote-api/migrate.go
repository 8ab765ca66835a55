package main

import (
	"context"
	"fmt"

	"github.com/landclear/quote-planner/internal/config"
	"github.com/landclear/quote-planner/internal/store"
	"github.com/landclear/quote-planner/pkg/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, flush, err := loadConfig()
		if err != nil {
			return err
		}
		defer flush()

		zap.S().Info("Initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			return fmt.Errorf("initializing data store: %w", err)
		}

		st := store.NewStore(db)
		defer st.Close()

		if err := migrate(cmd.Context(), cfg, db, st); err != nil {
			return err
		}

		zap.S().Info("Db migrated")
		return nil
	},
}

// migrate applies the SQL migrations when a folder is configured and falls
// back to creating the schema from the models otherwise.
func migrate(ctx context.Context, cfg *config.Config, db *gorm.DB, st store.Store) error {
	if folder := cfg.Service.MigrationFolder; folder != "" {
		zap.S().Infow("running sql migrations", "folder", folder)
		if err := migrations.MigrateStore(db, folder); err != nil {
			return fmt.Errorf("running sql migrations: %w", err)
		}
		return nil
	}

	zap.S().Info("running initial migration")
	if err := st.InitialMigration(ctx); err != nil {
		return fmt.Errorf("running initial migration: %w", err)
	}
	return nil
}
