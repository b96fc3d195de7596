package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/api"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/checkout"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/coupon"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/service"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx answer. Navigate tells the UI
// where to go when the thing it was looking at no longer exists.
type ErrorResponse struct {
	Error    string `json:"error"`
	Navigate string `json:"navigate,omitempty"`
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *zap.Logger) {
	WriteJSON(w, status, ErrorResponse{Error: message}, logger)
}

// WriteDomainError maps an error from the services to a status code.
func WriteDomainError(w http.ResponseWriter, err error, logger *zap.Logger) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	WriteJSON(w, status, body, logger)
}

func classify(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, service.ErrDishNotFound),
		errors.Is(err, service.ErrBlogNotFound),
		errors.Is(err, api.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Navigate: "home"}

	case errors.Is(err, service.ErrNotSignedIn),
		errors.Is(err, checkout.ErrNoIdentity),
		errors.Is(err, coupon.ErrNoUser),
		errors.Is(err, api.ErrSessionExpired):
		return http.StatusUnauthorized, ErrorResponse{Error: err.Error(), Navigate: "sign-in"}

	case errors.Is(err, checkout.ErrSubmissionInFlight),
		errors.Is(err, checkout.ErrInsufficientStock),
		errors.Is(err, checkout.ErrAddressChanged),
		errors.Is(err, api.ErrConflict):
		return http.StatusConflict, ErrorResponse{Error: err.Error()}

	case errors.Is(err, cart.ErrInvalidItem),
		errors.Is(err, coupon.ErrCouponNotFound),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrExceedsAvailable),
		errors.Is(err, cart.ErrSlotNotFound),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrUnknownOption),
		errors.Is(err, service.ErrMissingOption),
		errors.Is(err, service.ErrTooManyOptions),
		errors.Is(err, service.ErrDuplicateOption),
		errors.Is(err, service.ErrInvalidReview),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrPasswordTooWeak),
		errors.Is(err, service.ErrMissingPassword),
		errors.Is(err, checkout.ErrNoAddress),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidPayment):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()}

	case errors.Is(err, api.ErrBadRequest):
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return http.StatusBadRequest, ErrorResponse{Error: apiErr.Message}
		}
		return http.StatusBadRequest, ErrorResponse{Error: "Request rejected by the server"}

	case errors.Is(err, api.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: "Not allowed"}

	case errors.Is(err, checkout.ErrShippingUnavailable),
		errors.Is(err, api.ErrUnexpected):
		return http.StatusBadGateway, ErrorResponse{Error: "The server could not complete the request"}

	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"}
	}
}
