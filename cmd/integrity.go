package cmd

import (
	"context"
	"fmt"

	"items-planning/core/config"
	"items-planning/core/database"
	"items-planning/core/eform"
	"items-planning/core/logger"
	"items-planning/core/storage"
	"items-planning/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on storage, schema and the remote service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true, true)
	},
}

// storageCmd represents the integrity storage command
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the report bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the planning database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

// remoteCmd represents the integrity remote command
var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Ping the remote form service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(storageCmd, schemaCmd, remoteCmd)

	storageCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the missing bucket and folders")
}

func runIntegrityChecks(ctx context.Context, runStorage, runSchema, runRemote bool) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logg.Sync()

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	// Connect to Database (Optional)
	var db *gorm.DB
	if conn, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Optional database connection failed", zap.Error(err))
	} else {
		db = conn
	}

	svc := integrity.NewService(client, cfg.Storage, db, eform.New(cfg.Remote, logg), logg)
	failed := false

	if runStorage {
		logg.Info("Checking report storage...", zap.String("bucket", cfg.Storage.Bucket))
		missing, err := svc.CheckStorage(ctx)
		switch {
		case err != nil && !fixFlag:
			logg.Error("Storage check failed", zap.Error(err))
			failed = true
		case err == nil && len(missing) == 0:
			logg.Info("Storage is intact.")
		default:
			logg.Warn("Storage incomplete", zap.Strings("missing", missing), zap.Error(err))
			if fixFlag {
				if err != nil {
					missing = []string{cfg.Storage.ReportPrefix}
				}
				logg.Info("Fixing storage...")
				if err := svc.FixStorage(ctx, missing); err != nil {
					return fmt.Errorf("failed to fix storage: %w", err)
				}
				logg.Info("Storage fixed successfully.")
			} else {
				logg.Info("Run 'integrity storage --fix' to create them.")
				failed = true
			}
		}
	}

	if runSchema {
		logg.Info("Checking planning schema...")
		report, err := svc.CheckSchema()
		if err != nil {
			logg.Error("Schema check failed", zap.Error(err))
			failed = true
		} else if report.Matched {
			logg.Info("Planning schema matches the models.")
		} else {
			failed = true
			logg.Warn("Planning schema mismatches found")
			for table, tblReport := range report.Tables {
				if len(tblReport.MissingColumns) > 0 {
					logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tblReport.MissingColumns))
				}
				if len(tblReport.TypeMismatches) > 0 {
					logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tblReport.TypeMismatches))
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
	}

	if runRemote {
		logg.Info("Pinging remote service...", zap.String("base_url", cfg.Remote.BaseURL))
		report := svc.CheckRemote(ctx)
		if report.Reachable {
			logg.Info("Remote service reachable.", zap.Int64("latency_ms", report.LatencyMs))
		} else {
			logg.Error("Remote service unreachable", zap.String("error", report.Error))
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("integrity checks failed")
	}
	return nil
}
