package integrity

import (
	"context"

	"items-planning/core/storage"
	"items-planning/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client  storage.Client
	bucket  string
	region  string
	folders []string
	db      *gorm.DB
	remote  checks.Pinger
	logger  *zap.Logger
}

// NewService creates a new integrity service. The storage client and the remote
// pinger may be nil; their checks then report "skipped".
func NewService(client storage.Client, cfg storage.Config, db *gorm.DB, remote checks.Pinger, logger *zap.Logger) *Service {
	var folders []string
	if cfg.ReportPrefix != "" {
		folders = []string{cfg.ReportPrefix}
	}
	return &Service{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		folders: folders,
		db:      db,
		remote:  remote,
		logger:  logger,
	}
}

// Report is the combined result of every check.
type Report struct {
	Healthy bool           `json:"healthy"`
	Checks  map[string]any `json:"checks"`
}

// CheckStorage returns the report folders missing from the bucket.
func (s *Service) CheckStorage(ctx context.Context) ([]string, error) {
	return checks.CheckStorage(ctx, s.client, s.bucket, s.folders)
}

// FixStorage creates the bucket and the missing folders.
func (s *Service) FixStorage(ctx context.Context, missing []string) error {
	return checks.FixStorage(ctx, s.client, s.bucket, s.region, s.logger, missing)
}

// CheckSchema compares the planning tables against their models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db)
}

// CheckRemote pings the remote case service.
func (s *Service) CheckRemote(ctx context.Context) checks.RemoteReport {
	return checks.CheckRemote(ctx, s.remote)
}

// RunAll runs every configured check. Healthy is false when any check fails.
func (s *Service) RunAll(ctx context.Context) *Report {
	report := &Report{Healthy: true, Checks: make(map[string]any)}
	fail := func(name string, err error) {
		report.Healthy = false
		report.Checks[name] = map[string]any{"status": "error", "error": err.Error()}
	}

	if s.client == nil {
		report.Checks["storage"] = map[string]any{"status": "skipped"}
	} else if missing, err := s.CheckStorage(ctx); err != nil {
		fail("storage", err)
	} else {
		if len(missing) > 0 {
			report.Healthy = false
		}
		report.Checks["storage"] = map[string]any{"status": "ok", "missing": missing}
	}

	if schema, err := s.CheckSchema(); err != nil {
		fail("schema", err)
	} else {
		report.Healthy = report.Healthy && schema.Matched
		report.Checks["schema"] = schema
	}

	if s.remote == nil {
		report.Checks["remote"] = map[string]any{"status": "skipped"}
	} else {
		remote := s.CheckRemote(ctx)
		report.Healthy = report.Healthy && remote.Reachable
		report.Checks["remote"] = remote
	}

	return report
}
