package database

import (
	"context"
	"time"

	"foodlens/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// OpenRedis connects to the configured server. The key-value workload is a
// handful of small reads per command, so the pool stays small.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  ConnectTimeout,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     4,
	})

	err := verify(ctx, client, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}, storageErr("connect"))
	if err != nil {
		return nil, err
	}
	return client, nil
}
