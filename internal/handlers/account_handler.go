package handlers

import (
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AccountHandler handles sign-in, profile and address book requests
type AccountHandler struct {
	service *service.AccountService
	logger  *zap.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(service *service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		logger:  logger,
	}
}

// SignUp handles POST /api/auth/sign-up
func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	user, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, user, h.logger)
}

// SignIn handles POST /api/auth/sign-in
// Tokens stay inside the shell; only the profile is returned.
func (h *AccountHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	user, err := h.service.SignIn(r.Context(), req)
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, user, h.logger)
}

// SignOut handles POST /api/auth/sign-out
func (h *AccountHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SignOut(r.Context()); err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *AccountHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ChangePassword handles POST /api/auth/change-password
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	if err := h.service.ChangePassword(r.Context(), req); err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /api/profile
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.service.CurrentUser()
	if !ok {
		WriteDomainError(w, service.ErrNotSignedIn, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, user, h.logger)
}

// UpdateProfile handles PUT /api/profile
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.User
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	user, err := h.service.UpdateProfile(r.Context(), req)
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, user, h.logger)
}

// ListAddresses handles GET /api/addresses
func (h *AccountHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.service.Addresses(r.Context())
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	if addresses == nil {
		addresses = []models.Address{}
	}
	WriteJSON(w, http.StatusOK, addresses, h.logger)
}

// DeleteAddress handles DELETE /api/addresses/{addressId}
func (h *AccountHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAddress(r.Context(), chi.URLParam(r, "addressId")); err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
