package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how an order is paid.
type PaymentMethod string

const (
	PaymentCOD     PaymentMethod = "COD"
	PaymentBanking PaymentMethod = "BANKING"
)

// Valid reports whether the method is one the backend accepts.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentBanking
}

// OrderDraftItem is one submitted line.
type OrderDraftItem struct {
	DishID    string   `json:"dishId"`
	Quantity  int      `json:"quantity"`
	OptionIDs []string `json:"optionIds"`
}

// OrderDraft is assembled fresh for every checkout attempt and never stored.
type OrderDraft struct {
	UserID        string           `json:"userId"`
	AddressID     string           `json:"addressId"`
	CouponID      *string          `json:"couponId"`
	Items         []OrderDraftItem `json:"items"`
	PaymentMethod PaymentMethod    `json:"paymentMethod"`
	ShippingFee   decimal.Decimal  `json:"shippingFee"`
}

// Order is the backend view of a created order.
type Order struct {
	ID            string           `json:"id"`
	UserID        string           `json:"userId,omitempty"`
	Status        string           `json:"status,omitempty"`
	PaymentMethod PaymentMethod    `json:"paymentMethod,omitempty"`
	Items         []OrderDraftItem `json:"items,omitempty"`
	ShippingFee   decimal.Decimal  `json:"shippingFee"`
	Total         decimal.Decimal  `json:"total"`
	CreatedAt     time.Time        `json:"createdAt,omitempty"`
}

// ShippingQuote is the geocoding answer for a delivery address.
type ShippingQuote struct {
	Distance float64         `json:"distance"`
	Duration float64         `json:"duration"`
	Fee      decimal.Decimal `json:"fee"`
}

// PaymentReturn carries the vnp_* fields forwarded from the gateway redirect.
type PaymentReturn struct {
	OrderID           string `json:"orderId"`
	TxnRef            string `json:"txnRef"`
	ResponseCode      string `json:"responseCode"`
	TransactionStatus string `json:"transactionStatus"`
	Amount            string `json:"amount"`
	Success           bool   `json:"success"`
	Message           string `json:"message,omitempty"`
}
