package coupon

import (
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Resolver turns a subtotal and a coupon into a discount amount.
type Resolver struct {
	scale int32
}

// NewResolver creates a resolver that rounds to scale decimal places
// (0 for currencies without minor units).
func NewResolver(scale int32) *Resolver {
	return &Resolver{scale: scale}
}

// ComputeDiscount returns 0 when subtotal is below the coupon's minimum order
// value, otherwise min(subtotal*pct/100, maxDiscount). The percentage amount
// is rounded half-up to the currency unit before the cap is applied.
func (r *Resolver) ComputeDiscount(subtotal decimal.Decimal, c models.Coupon) decimal.Decimal {
	if !subtotal.IsPositive() || subtotal.LessThan(c.MinOrderValue) {
		return decimal.Zero
	}
	if !c.DiscountPercent.IsPositive() {
		return decimal.Zero
	}

	discount := subtotal.Mul(c.DiscountPercent).Div(hundred).Round(r.scale)
	if discount.GreaterThan(c.MaxDiscount) {
		discount = c.MaxDiscount
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount
}
