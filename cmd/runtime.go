package cmd

import (
	"context"
	"fmt"

	"items-planning/core/config"
	"items-planning/core/database"
	"items-planning/core/eform"
	"items-planning/core/logger"
	"items-planning/core/planning"
	"items-planning/core/queue"
	"items-planning/core/reconcile"
	"items-planning/core/storage"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds the components shared by the commands that reconcile.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	store    *planning.GormStore
	remote   *eform.Client
	storage  storage.Client
	archiver *reconcile.ReportArchiver
	redis    *redis.Client
	engine   *reconcile.Orchestrator
}

// bootstrap loads the configuration and wires the reconciliation engine.
// The database is required. The Redis lock replaces the in-process one when the
// queue is enabled so API, CLI and workers serialize on the same keys.
func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection required: %w", err)
	}

	rt := &runtime{
		cfg:    cfg,
		logger: logg,
		db:     db,
		store:  planning.NewStore(db),
		remote: eform.New(cfg.Remote, logg),
	}

	if cfg.Database.AutoMigrate {
		if err := rt.store.Migrate(ctx); err != nil {
			return nil, err
		}
		logg.Info("Planning schema migrated")
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	rt.storage = client

	opts := []reconcile.Option{reconcile.WithLogger(logg)}

	if cfg.Storage.ArchiveReports {
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			logg.Warn("Report bucket unavailable, archiving may fail", zap.Error(err))
		}
		rt.archiver = reconcile.NewReportArchiver(client, cfg.Storage.Bucket, cfg.Storage.ReportPrefix)
		opts = append(opts, reconcile.WithReportSink(rt.archiver))
	}

	if cfg.Queue.Enabled {
		rt.redis = cfg.Queue.NewRedisClient()
		opts = append(opts, reconcile.WithLocker(queue.NewRedisLocker(rt.redis, cfg.Queue, logg)))
	}

	sites := planning.NewConfiguredSites(rt.store, cfg.Reconcile.SiteIDs)
	rt.engine = reconcile.NewOrchestrator(rt.store, rt.remote, rt.remote, sites, cfg.Reconcile, opts...)
	return rt, nil
}

// Close releases the connections opened by bootstrap.
func (r *runtime) Close() {
	if r.redis != nil {
		_ = r.redis.Close()
	}
	if sqlDB, err := r.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = r.logger.Sync()
}
