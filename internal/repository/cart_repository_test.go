package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []models.CartLineItem {
	return []models.CartLineItem{
		{
			DishID:    "d1",
			Name:      "Pho Bo",
			UnitPrice: decimal.NewFromInt(45000),
			SelectedOptions: []models.SelectedOption{
				{GroupID: "size", OptionID: "large", AdditionalPrice: decimal.NewFromInt(10000)},
			},
			Quantity:          2,
			AvailableQuantity: 5,
		},
	}
}

func exerciseRepository(t *testing.T, repo CartRepository) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.Load(ctx, "device-1")
	assert.ErrorIs(t, err, ErrCartNotFound)

	require.NoError(t, repo.Save(ctx, "device-1", sampleItems()))

	items, err := repo.Load(ctx, "device-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "d1", items[0].DishID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].SelectedOptions[0].AdditionalPrice.Equal(decimal.NewFromInt(10000)))

	_, err = repo.Load(ctx, "device-2")
	assert.ErrorIs(t, err, ErrCartNotFound)

	require.NoError(t, repo.Delete(ctx, "device-1"))
	_, err = repo.Load(ctx, "device-1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestInMemoryCartRepository(t *testing.T) {
	exerciseRepository(t, NewInMemoryCartRepository())
}

func TestInMemoryCartRepository_IsolatesCallerSlices(t *testing.T) {
	repo := NewInMemoryCartRepository()
	items := sampleItems()
	require.NoError(t, repo.Save(context.Background(), "o", items))

	items[0].Quantity = 99
	items[0].SelectedOptions[0].OptionID = "mutated"

	loaded, err := repo.Load(context.Background(), "o")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded[0].Quantity)
	assert.Equal(t, "large", loaded[0].SelectedOptions[0].OptionID)
}

func TestRedisCartRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseRepository(t, NewRedisCartRepository(client, time.Hour))
}

func TestRedisCartRepository_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewRedisCartRepository(client, time.Minute)
	require.NoError(t, repo.Save(context.Background(), "o", sampleItems()))

	mr.FastForward(2 * time.Minute)

	_, err := repo.Load(context.Background(), "o")
	assert.ErrorIs(t, err, ErrCartNotFound)
}
