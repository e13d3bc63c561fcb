package queue

import (
	"context"
	"fmt"

	"items-planning/core/apperr"
	"items-planning/core/logger"
	"items-planning/core/reconcile"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Handler runs one reconciliation. *reconcile.Orchestrator implements it.
type Handler interface {
	Handle(ctx context.Context, ev reconcile.ItemChanged) (*reconcile.Report, error)
}

// Worker consumes ItemChanged tasks and hands them to the reconciliation engine.
//
// Failures the engine marks retryable (remote errors, lock conflicts) are
// redelivered by asynq with backoff; everything else is archived right away.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	handler Handler
	logger  *zap.Logger
}

// NewWorker creates a worker for the configured queue.
func NewWorker(cfg Config, handler Handler, log *zap.Logger) *Worker {
	log = logger.OrNop(log)

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 10
	}

	w := &Worker{
		mux:     asynq.NewServeMux(),
		handler: handler,
		logger:  log,
	}

	w.server = asynq.NewServer(cfg.RedisClientOpt(), asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			cfg.queueName(): 1,
		},
		Logger:       log.Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(w.logFailure),
	})
	w.mux.HandleFunc(TaskItemChanged, w.handleItemChanged)

	return w
}

// Run processes tasks until ctx is canceled, then waits for in-flight tasks to
// finish before returning.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("queue worker failed to start: %w", err)
	}

	<-ctx.Done()
	w.logger.Info("Stopping queue worker")
	w.server.Shutdown()
	return nil
}

// ProcessTask dispatches a single task. It lets tests drive the worker without Redis.
func (w *Worker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	return w.mux.ProcessTask(ctx, task)
}

func (w *Worker) handleItemChanged(ctx context.Context, task *asynq.Task) error {
	ev, err := ParseItemChangedPayload(task)
	if err != nil {
		return fmt.Errorf("malformed item changed payload: %v: %w", err, asynq.SkipRetry)
	}

	report, err := w.handler.Handle(ctx, ev)
	if err == nil {
		return nil
	}
	if apperr.IsRetryable(err) {
		return err
	}

	fields := []zap.Field{zap.Int("item_id", ev.ItemID), zap.String("kind", apperr.KindOf(err).String())}
	if report != nil {
		fields = append(fields, zap.String("run_id", report.RunID))
	}
	w.logger.Error("Item changed task will not be retried", append(fields, zap.Error(err))...)
	return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
}

func (w *Worker) logFailure(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	w.logger.Warn("Task failed",
		zap.String("type", task.Type()),
		zap.Int("retried", retried),
		zap.Error(err))
}
