package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dana280/heartbeat-app/pkg/relay"
)

// redisClient is the slice of go-redis the store actually needs,
// kept small so tests can substitute their own implementation.
type redisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Close() error
}

// RedisStore implements relay.TokenStore on a Redis string key per
// user. Semantics match MemoryStore: last write wins, no expiry.
type RedisStore struct {
	client redisClient
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client redisClient) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("tokenstore: redis client cannot be nil")
	}
	return &RedisStore{client: client}, nil
}

// Set stores or replaces the token for userID.
func (s *RedisStore) Set(ctx context.Context, userID string, token string) error {
	if err := s.client.Set(ctx, tokenKey(userID), token, 0).Err(); err != nil {
		return fmt.Errorf("tokenstore: redis set failed: %w", err)
	}
	return nil
}

// Fetch returns the token for userID, or relay.ErrTokenNotFound.
func (s *RedisStore) Fetch(ctx context.Context, userID string) (string, error) {
	token, err := s.client.Get(ctx, tokenKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", relay.ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("tokenstore: redis get failed: %w", err)
	}
	return token, nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }

func tokenKey(userID string) string { return "hb:pushtoken:" + userID }
