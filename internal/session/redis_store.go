package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the token under one key per terminal slot.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore builds a store using key "<prefix>:<slot>:token".
func NewRedisStore(client *redis.Client, prefix, slot string) *RedisStore {
	return &RedisStore{client: client, key: fmt.Sprintf("%s:%s:token", prefix, slot)}
}

// Key returns the Redis key holding the token.
func (r *RedisStore) Key() string {
	return r.key
}

func (r *RedisStore) Save(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, r.key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis save token: %w", err)
	}
	return nil
}

func (r *RedisStore) Read(ctx context.Context) (string, bool, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis read token: %w", err)
	}
	return token, true, nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis clear token: %w", err)
	}
	return nil
}
