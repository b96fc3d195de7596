package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the tokens under fixed keys so that they survive restarts
// of the shell.
type RedisStore struct {
	client     *redis.Client
	accessKey  string
	refreshKey string
}

func NewRedisStore(client *redis.Client, tokenKey string) *RedisStore {
	return &RedisStore{
		client:     client,
		accessKey:  "session:" + tokenKey,
		refreshKey: "session:" + tokenKey + ":refresh",
	}
}

func (s *RedisStore) get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return val, nil
}

func (s *RedisStore) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, s.accessKey)
}

func (s *RedisStore) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, s.refreshKey)
}

func (s *RedisStore) SetTokens(ctx context.Context, tokens models.Tokens) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.accessKey, tokens.AccessToken, 0)
	if tokens.RefreshToken != "" {
		pipe.Set(ctx, s.refreshKey, tokens.RefreshToken, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}
	return nil
}

func (s *RedisStore) ClearAccessToken(ctx context.Context) error {
	if err := s.client.Del(ctx, s.accessKey).Err(); err != nil {
		return fmt.Errorf("clear access token: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.accessKey, s.refreshKey).Err(); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}
