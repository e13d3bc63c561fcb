package cmd

import (
	"context"
	"fmt"

	"items-planning/core/config"
	"items-planning/core/database"
	"items-planning/core/logger"
	"items-planning/core/planning"

	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the planning tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the planning tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("database connection required: %w", err)
		}

		if err := planning.NewStore(db).Migrate(context.Background()); err != nil {
			return fmt.Errorf("failed to migrate planning schema: %w", err)
		}
		logg.Info("Planning schema is up to date")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
