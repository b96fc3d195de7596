package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisCartRepository stores each snapshot as a JSON blob with a TTL.
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisCartRepository) key(owner string) string {
	return fmt.Sprintf("cart:owner:%s", owner)
}

type cartSnapshot struct {
	Items     []models.CartLineItem `json:"items"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

func (r *RedisCartRepository) Load(ctx context.Context, owner string) ([]models.CartLineItem, error) {
	data, err := r.client.Get(ctx, r.key(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var snap cartSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return snap.Items, nil
}

func (r *RedisCartRepository) Save(ctx context.Context, owner string, items []models.CartLineItem) error {
	data, err := json.Marshal(cartSnapshot{Items: items, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.client.Set(ctx, r.key(owner), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *RedisCartRepository) Delete(ctx context.Context, owner string) error {
	if err := r.client.Del(ctx, r.key(owner)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
