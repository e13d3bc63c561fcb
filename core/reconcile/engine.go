package reconcile

import (
	"context"
	"fmt"
	"time"

	"items-planning/core/apperr"
	"items-planning/core/logger"
	"items-planning/core/planning"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Orchestrator handles ItemChanged events. It is safe for concurrent use; runs for
// the same item are serialized through the Locker.
type Orchestrator struct {
	store    planning.Store
	cases    CaseService
	sites    SiteSource
	folders  *FolderResolver
	planner  *PlanningCaseReconciler
	syncer   *SiteCaseSynchronizer
	locker   Locker
	sink     ReportSink
	validate *validator.Validate
	cfg      Config
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLocker replaces the default in-process KeyedMutex.
func WithLocker(l Locker) Option {
	return func(o *Orchestrator) { o.locker = l }
}

// WithReportSink archives the report of every run.
func WithReportSink(s ReportSink) Option {
	return func(o *Orchestrator) { o.sink = s }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator wires the reconciliation components together.
func NewOrchestrator(store planning.Store, cases CaseService, folders FolderService, sites SiteSource, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		cases:    cases,
		sites:    sites,
		locker:   NewKeyedMutex(),
		validate: validator.New(),
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logger.OrNop(o.logger)

	o.folders = NewFolderResolver(folders, o.logger)
	o.planner = NewPlanningCaseReconciler(store, o.logger)
	o.syncer = NewSiteCaseSynchronizer(store, cases, cfg.StrictCleanup, o.now, o.logger)
	return o
}

// Handle runs one reconciliation for ev and returns its report. A missing item is
// a skipped run, not an error. Errors carry an apperr kind; KindRemote failures are
// worth redelivering, KindConsistency failures need an operator. Nothing is rolled
// back on failure: the next run converges from whatever state was left.
func (o *Orchestrator) Handle(ctx context.Context, ev ItemChanged) (*Report, error) {
	if err := o.validate.Struct(ev); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "invalid item changed event", err).WithOp("reconcile.handle")
	}

	report := &Report{
		RunID:      newRunID(),
		ItemID:     ev.ItemID,
		TemplateID: ev.TemplateID,
		FolderName: ev.FolderName,
		Sites:      []SiteOutcome{},
		StartedAt:  o.now().UTC(),
	}
	log := o.logger.With(zap.String("run_id", report.RunID), zap.Int("item_id", ev.ItemID))

	lockCtx, cancel := context.WithTimeout(ctx, o.cfg.lockTimeout())
	unlock, err := o.locker.Lock(lockCtx, LockKey(ev.ItemID))
	cancel()
	if err != nil {
		return nil, remoteError("reconcile.handle", "acquire item lock", err)
	}
	defer unlock()

	log.Info("Reconciliation started", zap.Int("template_id", ev.TemplateID), zap.Bool("force", ev.Force))
	err = o.run(ctx, ev, report, log)
	report.FinishedAt = o.now().UTC()

	if err != nil {
		report.Error = err.Error()
		if apperr.IsKind(err, apperr.KindConsistency) {
			log.Error("Reconciliation aborted on consistency error", zap.Error(err))
		} else {
			log.Error("Reconciliation failed", zap.String("kind", apperr.KindOf(err).String()), zap.Error(err))
		}
	} else {
		log.Info("Reconciliation finished",
			zap.Bool("skipped", report.Skipped),
			zap.Bool("reused", report.Reused),
			zap.Int("planning_case_id", report.PlanningCaseID),
			zap.Int("created", report.Created()),
			zap.Int("deleted", report.Deleted()),
			zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)))
	}

	if o.sink != nil {
		if serr := o.sink.Save(ctx, report); serr != nil {
			log.Warn("Failed to archive report", zap.Error(serr))
		}
	}
	return report, err
}

func (o *Orchestrator) run(ctx context.Context, ev ItemChanged, report *Report, log *zap.Logger) error {
	item, err := o.store.GetItem(ctx, ev.ItemID)
	if err != nil {
		return err
	}
	if item == nil {
		report.Skipped = true
		log.Info("Item not found, nothing to reconcile")
		return nil
	}

	siteIDs, err := o.sites.SiteIDs(ctx)
	if err != nil {
		return err
	}

	tpl, err := o.cases.ReadTemplate(ctx, ev.TemplateID)
	if err != nil {
		return remoteError("reconcile.read_template", fmt.Sprintf("read template %d", ev.TemplateID), err)
	}
	if err := tpl.Validate(); err != nil {
		return err
	}

	folderID, err := o.folders.Resolve(ctx, ev.FolderName)
	if err != nil {
		return err
	}
	report.FolderID = folderID

	pc, err := o.planningCase(ctx, item, ev, report)
	if err != nil {
		return err
	}
	report.PlanningCaseID = pc.ID

	for _, siteID := range siteIDs {
		outcome, err := o.syncer.Sync(ctx, item, pc, siteID, tpl, folderID)
		report.Sites = append(report.Sites, outcome)
		if err != nil {
			return err
		}
	}
	return nil
}

// planningCase returns the planning case this run binds sites to. An unchanged item
// keeps its active case so a repeated event creates nothing remotely; otherwise the
// active case is retracted and replaced.
func (o *Orchestrator) planningCase(ctx context.Context, item *planning.Item, ev ItemChanged, report *Report) (*planning.PlanningCase, error) {
	fingerprint := Fingerprint(item, ev.TemplateID, ev.FolderName)

	if !ev.Force {
		active, err := o.store.ActivePlanningCases(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		if len(active) == 1 && active[0].Fingerprint == fingerprint && active[0].RemoteTemplateID == ev.TemplateID {
			report.Reused = true
			return &active[0], nil
		}
	}

	current, previous, err := o.planner.Reconcile(ctx, item, ev.TemplateID, fingerprint)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		id := previous.ID
		report.RetractedCaseID = &id
	}
	return current, nil
}

// newRunID returns a time ordered id so archived reports sort chronologically.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
