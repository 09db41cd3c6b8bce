package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in Redis as JSON with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a RedisStore on client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get returns the session's user or ErrNoSession.
func (s *RedisStore) Get(ctx context.Context, token string) (*User, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &u, nil
}

// Create opens a session for u and returns its token.
func (s *RedisStore) Create(ctx context.Context, u User) (string, error) {
	raw, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	token := uuid.NewString()
	if err := s.client.Set(ctx, redisKeyPrefix+token, raw, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set session: %w", err)
	}
	return token, nil
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
