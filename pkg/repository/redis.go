package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/foodcart/pkg/config"
	"github.com/go-redis/redis/v8"
)

// RedisRepository keeps encoded cart snapshots, one key per cart.
type RedisRepository struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		config: cfg,
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// SaveSnapshot overwrites key. Every write refreshes the snapshot TTL, so carts
// expire only after a period without mutations.
func (r *RedisRepository) SaveSnapshot(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, key, data, r.snapshotTTL()).Err()
}

// LoadSnapshot returns nil, nil when key does not exist.
func (r *RedisRepository) LoadSnapshot(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RedisRepository) DeleteSnapshot(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func (r *RedisRepository) snapshotTTL() time.Duration {
	if r.config.SnapshotTTL < 0 {
		return 0
	}
	return r.config.SnapshotTTL
}
