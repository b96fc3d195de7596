package handlers

import (
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartHandler exposes the cart store
type CartHandler struct {
	service *service.CartService
	logger  *zap.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(service *service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger,
	}
}

// CartResponse is the cart as the UI renders it.
type CartResponse struct {
	Items    []models.CartLineItem `json:"items"`
	Count    int                   `json:"count"`
	Subtotal decimal.Decimal       `json:"subtotal"`
	Status   cart.Status           `json:"status"`
}

func cartResponse(st cart.State) CartResponse {
	count := 0
	for _, q := range st.Quantities() {
		count += q
	}
	return CartResponse{
		Items:    st.Items(),
		Count:    count,
		Subtotal: st.Subtotal(),
		Status:   st.Status(),
	}
}

// writeCart answers with the cart even when the change was rejected, so the
// UI can show the status message.
func (h *CartHandler) writeCart(w http.ResponseWriter, st cart.State, err error) {
	if err != nil {
		status, body := classify(err)
		if status >= http.StatusInternalServerError || status == http.StatusNotFound {
			WriteDomainError(w, err, h.logger)
			return
		}
		WriteJSON(w, status, struct {
			ErrorResponse
			Cart CartResponse `json:"cart"`
		}{body, cartResponse(st)}, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, cartResponse(st), h.logger)
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, cartResponse(h.service.Snapshot()), h.logger)
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req service.AddToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	st, err := h.service.AddDish(r.Context(), req)
	h.writeCart(w, st, err)
}

type slotRequest struct {
	DishID   string                 `json:"dishId"`
	Options  []service.OptionChoice `json:"options"`
	Quantity int                    `json:"quantity"`
}

// UpdateItem handles PUT /api/cart/items
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	st, err := h.service.UpdateQuantity(r.Context(), req.DishID, req.Options, req.Quantity)
	h.writeCart(w, st, err)
}

// RemoveItem handles DELETE /api/cart/items
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	h.writeCart(w, h.service.Remove(r.Context(), req.DishID, req.Options), nil)
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, h.service.Clear(r.Context()), nil)
}
