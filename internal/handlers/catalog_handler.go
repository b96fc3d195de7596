package handlers

import (
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler handles dish, blog and review requests
type CatalogHandler struct {
	service *service.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger,
	}
}

// ListDishes handles GET /api/dishes
func (h *CatalogHandler) ListDishes(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListDishes(r.Context(), pageQuery(r))
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, page, h.logger)
}

// GetDish handles GET /api/dishes/{dishId}
// - 200: the dish
// - 404: dish not found, the UI is sent home
func (h *CatalogHandler) GetDish(w http.ResponseWriter, r *http.Request) {
	dishID := chi.URLParam(r, "dishId")
	if dishID == "" {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	dish, err := h.service.GetDish(r.Context(), dishID)
	if err != nil {
		h.logger.Info("dish lookup failed", zap.String("dish_id", dishID), zap.Error(err))
		WriteDomainError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, dish, h.logger)
}

// ListReviews handles GET /api/dishes/{dishId}/reviews
func (h *CatalogHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListReviews(r.Context(), chi.URLParam(r, "dishId"), pageQuery(r))
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, page, h.logger)
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview handles POST /api/dishes/{dishId}/reviews
func (h *CatalogHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	review, err := h.service.CreateReview(r.Context(), models.Review{
		DishID:  chi.URLParam(r, "dishId"),
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, review, h.logger)
}

// ListBlogs handles GET /api/blogs
func (h *CatalogHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListBlogs(r.Context(), pageQuery(r))
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, page, h.logger)
}

// GetBlog handles GET /api/blogs/{blogId}
func (h *CatalogHandler) GetBlog(w http.ResponseWriter, r *http.Request) {
	blog, err := h.service.GetBlog(r.Context(), chi.URLParam(r, "blogId"))
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, blog, h.logger)
}
