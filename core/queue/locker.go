package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"items-planning/core/apperr"
	"items-planning/core/logger"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLocker is a reconcile.Locker shared by every replica. Locks expire after the
// configured TTL and are refreshed while held, so a crashed worker frees the item.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisLocker creates a distributed locker on top of rdb.
func NewRedisLocker(rdb *redis.Client, cfg Config, log *zap.Logger) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(rdb),
		ttl:    cfg.lockTTL(),
		logger: logger.OrNop(log),
	}
}

// Lock obtains key, retrying until ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(100 * time.Millisecond),
	})
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return nil, apperr.Wrap(apperr.KindConflict, "lock "+key+" is held elsewhere", err).WithOp("queue.lock")
	}
	if err != nil {
		return nil, apperr.Remote("obtain lock "+key, err).WithOp("queue.lock")
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(lock, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				l.logger.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}

func (l *RedisLocker) keepAlive(lock *redislock.Lock, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := lock.Refresh(context.Background(), l.ttl, nil); err != nil {
				l.logger.Warn("Failed to refresh lock", zap.String("key", lock.Key()), zap.Error(err))
				return
			}
		}
	}
}
