package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_NotifiesSubscribers(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var seen []int
	unsubscribe := store.Subscribe(func(s State) {
		seen = append(seen, s.QuantityOf("d1"))
	})

	_, err := store.Add(ctx, item("d1", 2, 5))
	require.NoError(t, err)
	_, err = store.Add(ctx, item("d1", 4, 5))
	require.ErrorIs(t, err, ErrExceedsAvailable)

	unsubscribe()
	store.Clear(ctx)

	assert.Equal(t, []int{2, 2}, seen)
	assert.True(t, store.Snapshot().IsEmpty())
}

func TestStore_PersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewInMemoryCartRepository()

	first := NewStore(WithRepository(repo, "device"))
	_, err := first.Add(ctx, item("d1", 2, 5, opt("size", "L", 1000)))
	require.NoError(t, err)

	second := NewStore(WithRepository(repo, "device"))
	require.NoError(t, second.Restore(ctx))
	assert.Equal(t, 2, second.Snapshot().QuantityOf("d1"))

	second.Clear(ctx)
	_, err = repo.Load(ctx, "device")
	assert.ErrorIs(t, err, repository.ErrCartNotFound)
}

func TestStore_RejectedTransitionIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewInMemoryCartRepository()
	store := NewStore(WithRepository(repo, "device"))

	_, err := store.Add(ctx, item("d1", 9, 5))
	require.Error(t, err)

	_, err = repo.Load(ctx, "device")
	assert.ErrorIs(t, err, repository.ErrCartNotFound)
}

func TestStore_ConcurrentAddsNeverOversell(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Add(ctx, item("d1", 1, 10))
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, store.Snapshot().QuantityOf("d1"))
}
