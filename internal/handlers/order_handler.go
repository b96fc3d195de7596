package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/notify"
	"go.uber.org/zap"
)

type orderHistory interface {
	Orders(ctx context.Context, q models.PageQuery) (models.Page[models.Order], error)
}

type paymentConfirmer interface {
	ConfirmReturn(ctx context.Context, params url.Values) (models.PaymentReturn, error)
}

// OrderHandler handles order history and the payment gateway return
type OrderHandler struct {
	orders   orderHistory
	payments paymentConfirmer
	notifier notify.Notifier
	log      *zap.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders orderHistory, payments paymentConfirmer, notifier notify.Notifier, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		payments: payments,
		notifier: notifier,
		log:      log,
	}
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, err := h.orders.Orders(r.Context(), pageQuery(r))
	if err != nil {
		WriteDomainError(w, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, page, h.log)
}

// PaymentReturn handles GET /api/payment/return
// The gateway redirect lands here; its vnp_* parameters are forwarded to the
// backend, which verifies them.
func (h *OrderHandler) PaymentReturn(w http.ResponseWriter, r *http.Request) {
	res, err := h.payments.ConfirmReturn(r.Context(), r.URL.Query())
	if err != nil {
		h.log.Error("failed to confirm payment", zap.Error(err))
		h.notifier.Error("Could not confirm your payment")
		WriteDomainError(w, err, h.log)
		return
	}

	if res.Success {
		h.notifier.Success("Payment completed")
	} else {
		h.notifier.Error("Payment was not completed")
	}
	h.log.Info("payment return",
		zap.String("order_id", res.OrderID),
		zap.String("response_code", res.ResponseCode),
		zap.Bool("success", res.Success),
	)
	WriteJSON(w, http.StatusOK, res, h.log)
}
