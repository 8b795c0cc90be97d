package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisSubstrate stores values as plain Redis strings without expiry.
type RedisSubstrate struct {
	client *redis.Client
	prefix string
}

// NewRedisSubstrate namespaces every key with prefix.
func NewRedisSubstrate(client *redis.Client, prefix string) *RedisSubstrate {
	if client == nil {
		panic("storage.NewRedisSubstrate: client is nil")
	}
	return &RedisSubstrate{client: client, prefix: prefix}
}

func (r *RedisSubstrate) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (r *RedisSubstrate) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}
