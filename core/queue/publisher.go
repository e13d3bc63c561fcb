package queue

import (
	"context"
	"fmt"

	"items-planning/core/reconcile"

	"github.com/hibiken/asynq"
)

// Publisher enqueues ItemChanged events.
type Publisher struct {
	client   *asynq.Client
	queue    string
	maxRetry int
}

// NewPublisher creates a publisher connected to the configured Redis.
func NewPublisher(cfg Config) *Publisher {
	return &Publisher{
		client:   asynq.NewClient(cfg.RedisClientOpt()),
		queue:    cfg.queueName(),
		maxRetry: cfg.MaxRetry,
	}
}

// Publish enqueues ev and returns the task id.
func (p *Publisher) Publish(ctx context.Context, ev reconcile.ItemChanged) (string, error) {
	task, err := NewItemChangedTask(ev)
	if err != nil {
		return "", fmt.Errorf("failed to encode item changed task: %w", err)
	}

	info, err := p.client.EnqueueContext(ctx, task, asynq.Queue(p.queue), asynq.MaxRetry(p.maxRetry))
	if err != nil {
		return "", fmt.Errorf("failed to enqueue item %d: %w", ev.ItemID, err)
	}
	return info.ID, nil
}

// Close closes the Redis connection.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
