package handlers

import (
	"context"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/checkout"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"go.uber.org/zap"
)

type addressBook interface {
	Addresses(ctx context.Context) ([]models.Address, error)
}

// CheckoutHandler drives the checkout orchestrator
type CheckoutHandler struct {
	checkout  *checkout.Orchestrator
	addresses addressBook
	logger    *zap.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(orch *checkout.Orchestrator, addresses addressBook, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout:  orch,
		addresses: addresses,
		logger:    logger,
	}
}

// CheckoutResponse is the checkout screen state.
type CheckoutResponse struct {
	checkout.State
	Summary checkout.Summary `json:"summary"`
}

func (h *CheckoutHandler) view() CheckoutResponse {
	return CheckoutResponse{State: h.checkout.State(), Summary: h.checkout.Summary()}
}

// GetCheckout handles GET /api/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.view(), h.logger)
}

// GetSummary handles GET /api/checkout/summary
func (h *CheckoutHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.checkout.Summary(), h.logger)
}

type selectAddressRequest struct {
	AddressID string `json:"addressId"`
}

// SelectAddress handles POST /api/checkout/address
// The address must be one of the user's saved addresses.
func (h *CheckoutHandler) SelectAddress(w http.ResponseWriter, r *http.Request) {
	var req selectAddressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	addresses, err := h.addresses.Addresses(r.Context())
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}

	var selected *models.Address
	for i := range addresses {
		if addresses[i].ID == req.AddressID {
			selected = &addresses[i]
			break
		}
	}
	if selected == nil {
		WriteError(w, http.StatusUnprocessableEntity, "Unknown address", h.logger)
		return
	}

	if _, err := h.checkout.SelectAddress(r.Context(), *selected); err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, h.view(), h.logger)
}

type submitRequest struct {
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

// Submit handles POST /api/checkout/submit
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	res, err := h.checkout.Submit(r.Context(), req.PaymentMethod)
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, res, h.logger)
}

// Reset handles POST /api/checkout/reset
func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.checkout.Reset()
	WriteJSON(w, http.StatusOK, h.view(), h.logger)
}
