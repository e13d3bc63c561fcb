package queue

import (
	"context"
	"testing"
	"time"

	"items-planning/core/apperr"
	"items-planning/core/reconcile"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ reconcile.Locker = (*RedisLocker)(nil)

func setupRedis(t *testing.T) (*miniredis.Miniredis, Config) {
	mr := miniredis.RunT(t)
	return mr, Config{RedisAddr: mr.Addr(), Name: "items_planning_test", LockTTLSeconds: 30}
}

func TestRedisLocker(t *testing.T) {
	mr, cfg := setupRedis(t)
	rdb := cfg.NewRedisClient()
	t.Cleanup(func() { _ = rdb.Close() })

	locker := NewRedisLocker(rdb, cfg, nil)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "items-planning:item:1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("items-planning:item:1"))

	short, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(short, "items-planning:item:1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	other, err := locker.Lock(ctx, "items-planning:item:2")
	require.NoError(t, err)
	other()

	unlock()
	unlock()
	assert.False(t, mr.Exists("items-planning:item:1"))

	again, err := locker.Lock(ctx, "items-planning:item:1")
	require.NoError(t, err)
	again()
}

func TestPublisher_Publish(t *testing.T) {
	mr, cfg := setupRedis(t)
	pub := NewPublisher(cfg)
	t.Cleanup(func() { _ = pub.Close() })

	id, err := pub.Publish(context.Background(), itemChanged(3))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	pending, err := mr.List("asynq:{items_planning_test}:pending")
	require.NoError(t, err)
	assert.Equal(t, []string{id}, pending)
}
