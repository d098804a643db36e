package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisAdapter backs the key-value store port with Redis. It exposes
// only plain GET/SET: the ledger owns all decrement semantics, so there
// is deliberately no atomic decrement here.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *RedisAdapter) Put(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}
