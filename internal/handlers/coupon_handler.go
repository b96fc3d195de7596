package handlers

import (
	"context"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/coupon"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// couponBook is the interface for the applied-coupon holder
type couponBook interface {
	Load(ctx context.Context, userID string) ([]models.Coupon, error)
	Offers(subtotal decimal.Decimal) []coupon.Offer
	Apply(idOrCode string) (models.Coupon, error)
	Applied() (models.Coupon, bool)
	Discount(subtotal decimal.Decimal) decimal.Decimal
	Clear()
}

type userIdentity interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

type cartReader interface {
	Snapshot() cart.State
}

// CouponHandler handles HTTP requests for the user's coupons
type CouponHandler struct {
	book     couponBook
	identity userIdentity
	cart     cartReader
	logger   *zap.Logger
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(book couponBook, identity userIdentity, cart cartReader, logger *zap.Logger) *CouponHandler {
	return &CouponHandler{
		book:     book,
		identity: identity,
		cart:     cart,
		logger:   logger,
	}
}

// CouponsResponse lists the offered coupons priced against the current cart.
type CouponsResponse struct {
	Offers  []coupon.Offer `json:"offers"`
	Applied *models.Coupon `json:"applied,omitempty"`
}

// ListCoupons handles GET /api/coupons
// Reloads the coupons the user has not used yet.
func (h *CouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	userID, _ := h.identity.CurrentUserID(r.Context())
	if _, err := h.book.Load(r.Context(), userID); err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}

	resp := CouponsResponse{Offers: h.book.Offers(h.cart.Snapshot().Subtotal())}
	if c, ok := h.book.Applied(); ok {
		resp.Applied = &c
	}
	WriteJSON(w, http.StatusOK, resp, h.logger)
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

// ApplyCoupon handles POST /api/coupons/apply
// Accepts a coupon id or code. A coupon whose minimum is not met can still be
// applied; its discount stays zero until the cart grows.
func (h *CouponHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	if req.Code == "" {
		WriteError(w, http.StatusBadRequest, "Coupon code is required", h.logger)
		return
	}

	c, err := h.book.Apply(req.Code)
	if err != nil {
		h.logger.Info("coupon not applied", zap.String("code", req.Code), zap.Error(err))
		WriteDomainError(w, err, h.logger)
		return
	}

	subtotal := h.cart.Snapshot().Subtotal()
	WriteJSON(w, http.StatusOK, coupon.Offer{
		Coupon:   c,
		Eligible: !subtotal.LessThan(c.MinOrderValue),
		Discount: h.book.Discount(subtotal),
	}, h.logger)
}

// ClearCoupon handles DELETE /api/coupons/applied
func (h *CouponHandler) ClearCoupon(w http.ResponseWriter, r *http.Request) {
	h.book.Clear()
	w.WriteHeader(http.StatusNoContent)
}
