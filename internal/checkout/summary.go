package checkout

import (
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/shopspring/decimal"
)

// Summary is the price breakdown shown before payment.
type Summary struct {
	Items       int             `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Total       decimal.Decimal `json:"total"`
	Coupon      *models.Coupon  `json:"coupon,omitempty"`
}

// Summary prices the current cart: subtotal - discount + shipping fee.
// The fee is the one from the last successful lookup, zero before that.
func (o *Orchestrator) Summary() Summary {
	snapshot := o.cart.Snapshot()
	subtotal := snapshot.Subtotal()

	o.mu.RLock()
	fee := o.fee
	o.mu.RUnlock()

	s := Summary{
		Items:       snapshot.Len(),
		Subtotal:    subtotal,
		Discount:    decimal.Zero,
		ShippingFee: fee,
	}
	if c, ok := o.coupons.Applied(); ok {
		s.Coupon = &c
		s.Discount = o.coupons.Discount(subtotal)
	}
	s.Total = subtotal.Sub(s.Discount).Add(fee)
	return s
}
