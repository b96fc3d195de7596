package models

import "github.com/shopspring/decimal"

// Coupon is a percentage discount with a cap and a minimum order subtotal.
type Coupon struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	Description     string          `json:"description,omitempty"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	MaxDiscount     decimal.Decimal `json:"maxDiscount"`
	MinOrderValue   decimal.Decimal `json:"minOrderValue"`
}
