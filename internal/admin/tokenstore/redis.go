package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the token in Redis for operators who share a session
// cache between workstations. No TTL is set: expiry is the backend's call.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

// NewRedis returns a store that keeps the token under prefix+Key.
func NewRedis(client redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{client: client, key: prefix + Key}
}

func (s *RedisStore) Get(ctx context.Context) (string, bool, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get token: %w", err)
	}
	return token, token != "", nil
}

func (s *RedisStore) Set(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis clear token: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
