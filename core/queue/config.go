package queue

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Config holds configuration for the item-changed task queue and the distributed lock.
type Config struct {
	// Enabled routes API triggered reconciliations through the queue instead of running them inline.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// RedisAddr is the host:port of the Redis server.
	RedisAddr string `mapstructure:"redis_addr" default:"localhost:6379"`
	// RedisPassword is the Redis password, empty for none.
	RedisPassword string `mapstructure:"redis_password" default:""`
	// RedisDB is the Redis database number.
	RedisDB int `mapstructure:"redis_db" default:"0"`
	// Name is the asynq queue name.
	Name string `mapstructure:"name" default:"items_planning"`
	// Concurrency is the number of tasks a worker processes at once.
	Concurrency int `mapstructure:"concurrency" default:"10"`
	// MaxRetry is the number of redeliveries of a failed task.
	MaxRetry int `mapstructure:"max_retry" default:"10"`
	// LockTTLSeconds is the expiry of the per-item lock. It is refreshed while held.
	LockTTLSeconds int `mapstructure:"lock_ttl_seconds" default:"60"`
}

// RedisClientOpt returns the asynq connection options.
func (c Config) RedisClientOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// NewRedisClient creates the go-redis client used by the lock.
func (c Config) NewRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
}

func (c Config) queueName() string {
	if c.Name == "" {
		return "items_planning"
	}
	return c.Name
}

func (c Config) lockTTL() time.Duration {
	if c.LockTTLSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.LockTTLSeconds) * time.Second
}
