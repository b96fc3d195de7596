package coupon

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrCouponNotFound = errors.New("coupon not found")
	ErrNoUser         = errors.New("user id is required to load coupons")
)

// Source lists the coupons a user has not used yet.
type Source interface {
	ListUnusedCoupons(ctx context.Context, userID string) ([]models.Coupon, error)
}

// Book holds the coupons offered to the current user and the one applied to
// the cart, if any.
type Book struct {
	source   Source
	resolver *Resolver

	mu      sync.RWMutex
	coupons []models.Coupon
	applied *models.Coupon
}

// NewBook creates an empty coupon book
func NewBook(source Source, resolver *Resolver) *Book {
	return &Book{
		source:   source,
		resolver: resolver,
	}
}

// Load replaces the offered coupons with a fresh list from the backend.
// An applied coupon that is no longer offered is dropped.
func (b *Book) Load(ctx context.Context, userID string) ([]models.Coupon, error) {
	if userID == "" {
		return nil, ErrNoUser
	}

	coupons, err := b.source.ListUnusedCoupons(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load coupons: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.coupons = append([]models.Coupon(nil), coupons...)
	if b.applied != nil {
		if _, ok := b.find(b.applied.ID); !ok {
			b.applied = nil
		}
	}
	return append([]models.Coupon(nil), b.coupons...), nil
}

// Coupons returns the offered coupons.
func (b *Book) Coupons() []models.Coupon {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]models.Coupon(nil), b.coupons...)
}

// Find looks up an offered coupon by id or code.
func (b *Book) Find(idOrCode string) (models.Coupon, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.find(idOrCode)
}

func (b *Book) find(idOrCode string) (models.Coupon, bool) {
	for _, c := range b.coupons {
		if c.ID == idOrCode || c.Code == idOrCode {
			return c, true
		}
	}
	return models.Coupon{}, false
}

// Apply selects an offered coupon, replacing any previous one.
func (b *Book) Apply(idOrCode string) (models.Coupon, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.find(idOrCode)
	if !ok {
		return models.Coupon{}, ErrCouponNotFound
	}
	b.applied = &c
	return c, nil
}

// Applied returns the applied coupon.
func (b *Book) Applied() (models.Coupon, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.applied == nil {
		return models.Coupon{}, false
	}
	return *b.applied, true
}

// Clear removes the applied coupon.
func (b *Book) Clear() {
	b.mu.Lock()
	b.applied = nil
	b.mu.Unlock()
}

// Reset forgets both the offered list and the applied coupon (sign-out).
func (b *Book) Reset() {
	b.mu.Lock()
	b.coupons = nil
	b.applied = nil
	b.mu.Unlock()
}

// Discount is what the applied coupon takes off subtotal.
func (b *Book) Discount(subtotal decimal.Decimal) decimal.Decimal {
	c, ok := b.Applied()
	if !ok {
		return decimal.Zero
	}
	return b.resolver.ComputeDiscount(subtotal, c)
}

// Offer is a coupon together with what it would be worth right now.
type Offer struct {
	Coupon   models.Coupon   `json:"coupon"`
	Eligible bool            `json:"eligible"`
	Discount decimal.Decimal `json:"discount"`
}

// Offers evaluates every offered coupon against subtotal.
func (b *Book) Offers(subtotal decimal.Decimal) []Offer {
	coupons := b.Coupons()
	offers := make([]Offer, 0, len(coupons))
	for _, c := range coupons {
		offers = append(offers, Offer{
			Coupon:   c,
			Eligible: !subtotal.LessThan(c.MinOrderValue),
			Discount: b.resolver.ComputeDiscount(subtotal, c),
		})
	}
	return offers
}
