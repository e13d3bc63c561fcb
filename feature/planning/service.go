package planning

import (
	"context"

	"items-planning/core/apperr"
	"items-planning/core/planning"
	"items-planning/core/reconcile"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Reconciler runs one reconciliation synchronously.
type Reconciler interface {
	Handle(ctx context.Context, ev reconcile.ItemChanged) (*reconcile.Report, error)
}

// Enqueuer hands an event to the task queue.
type Enqueuer interface {
	Publish(ctx context.Context, ev reconcile.ItemChanged) (string, error)
}

// ReportStore reads archived run reports.
type ReportStore interface {
	List(ctx context.Context, itemID int) ([]string, error)
	Load(ctx context.Context, itemID int, runID string) (*reconcile.Report, error)
}

// Result is the outcome of a reconcile request: either a finished report or a queued task.
type Result struct {
	Queued bool              `json:"queued"`
	TaskID string            `json:"task_id,omitempty"`
	Report *reconcile.Report `json:"report,omitempty"`
}

// Service handles planning operations.
type Service struct {
	store     planning.Store
	engine    Reconciler
	publisher Enqueuer
	reports   ReportStore
	validate  *validator.Validate
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher routes reconcile requests through the task queue.
func WithPublisher(p Enqueuer) Option {
	return func(s *Service) { s.publisher = p }
}

// WithReports enables the report endpoints.
func WithReports(r ReportStore) Option {
	return func(s *Service) { s.reports = r }
}

// NewService creates a new planning service.
func NewService(store planning.Store, engine Reconciler, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		engine:   engine,
		validate: validator.New(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reconcile runs ev inline, or enqueues it when a publisher is configured and sync is false.
// A failed inline run still returns its report.
func (s *Service) Reconcile(ctx context.Context, ev reconcile.ItemChanged, sync bool) (*Result, error) {
	if err := s.validate.Struct(ev); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "invalid reconcile request", err).WithOp("planning.reconcile")
	}

	if s.publisher != nil && !sync {
		taskID, err := s.publisher.Publish(ctx, ev)
		if err != nil {
			return nil, apperr.Internal("failed to enqueue reconciliation", err).WithOp("planning.reconcile")
		}
		return &Result{Queued: true, TaskID: taskID}, nil
	}

	report, err := s.engine.Handle(ctx, ev)
	return &Result{Report: report}, err
}

// Cases returns every planning case of an item, newest first.
func (s *Service) Cases(ctx context.Context, itemID int) ([]planning.PlanningCase, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("item not found").WithOp("planning.cases")
	}
	return s.store.ListPlanningCases(ctx, itemID)
}

// Reports returns the archived run ids of an item.
func (s *Service) Reports(ctx context.Context, itemID int) ([]string, error) {
	if s.reports == nil {
		return nil, errArchiveDisabled
	}
	return s.reports.List(ctx, itemID)
}

// Report returns one archived run report.
func (s *Service) Report(ctx context.Context, itemID int, runID string) (*reconcile.Report, error) {
	if s.reports == nil {
		return nil, errArchiveDisabled
	}
	return s.reports.Load(ctx, itemID, runID)
}

var errArchiveDisabled = apperr.NotFound("report archive is disabled").WithOp("planning.reports")
