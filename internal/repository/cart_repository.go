package repository

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
)

var (
	ErrCartNotFound = errors.New("cart snapshot not found")
)

// CartRepository persists cart snapshots keyed by an owner (device or user).
type CartRepository interface {
	Load(ctx context.Context, owner string) ([]models.CartLineItem, error)
	Save(ctx context.Context, owner string, items []models.CartLineItem) error
	Delete(ctx context.Context, owner string) error
}

// InMemoryCartRepository implements CartRepository with in-memory storage
type InMemoryCartRepository struct {
	mu    sync.RWMutex
	carts map[string][]models.CartLineItem
}

// NewInMemoryCartRepository creates an empty in-memory cart repository
func NewInMemoryCartRepository() *InMemoryCartRepository {
	return &InMemoryCartRepository{
		carts: make(map[string][]models.CartLineItem),
	}
}

// Load returns the stored snapshot for owner
func (r *InMemoryCartRepository) Load(ctx context.Context, owner string) ([]models.CartLineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items, exists := r.carts[owner]
	if !exists {
		return nil, ErrCartNotFound
	}
	return cloneItems(items), nil
}

// Save replaces the snapshot for owner
func (r *InMemoryCartRepository) Save(ctx context.Context, owner string, items []models.CartLineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[owner] = cloneItems(items)
	return nil
}

// Delete drops the snapshot for owner
func (r *InMemoryCartRepository) Delete(ctx context.Context, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, owner)
	return nil
}

func cloneItems(items []models.CartLineItem) []models.CartLineItem {
	out := make([]models.CartLineItem, len(items))
	for i, it := range items {
		it.SelectedOptions = slices.Clone(it.SelectedOptions)
		out[i] = it
	}
	return out
}
