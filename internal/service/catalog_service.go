package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/api"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
)

var (
	ErrDishNotFound  = errors.New("dish not found")
	ErrBlogNotFound  = errors.New("blog not found")
	ErrInvalidReview = errors.New("rating must be between 1 and 5")
	ErrNotSignedIn   = errors.New("sign in first")
)

const maxPageSize = 50

// CatalogAPI is the part of the backend the catalog screens read from.
type CatalogAPI interface {
	ListDishes(ctx context.Context, q models.PageQuery) (models.Page[models.Dish], error)
	GetDish(ctx context.Context, id string) (models.Dish, error)
	ListBlogs(ctx context.Context, q models.PageQuery) (models.Page[models.Blog], error)
	GetBlog(ctx context.Context, id string) (models.Blog, error)
	ListReviews(ctx context.Context, dishID string, q models.PageQuery) (models.Page[models.Review], error)
	CreateReview(ctx context.Context, review models.Review) (models.Review, error)
}

// CatalogService handles dishes, blogs and reviews
type CatalogService struct {
	api      CatalogAPI
	identity UserIdentity
}

// UserIdentity reports the signed-in user, if any.
type UserIdentity interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalog CatalogAPI, identity UserIdentity) *CatalogService {
	return &CatalogService{
		api:      catalog,
		identity: identity,
	}
}

// ListDishes returns one page of dishes
func (s *CatalogService) ListDishes(ctx context.Context, q models.PageQuery) (models.Page[models.Dish], error) {
	return s.api.ListDishes(ctx, clampPage(q))
}

// GetDish returns a dish by ID
func (s *CatalogService) GetDish(ctx context.Context, id string) (models.Dish, error) {
	dish, err := s.api.GetDish(ctx, id)
	if errors.Is(err, api.ErrNotFound) {
		return models.Dish{}, fmt.Errorf("%w: %s", ErrDishNotFound, id)
	}
	return dish, err
}

func (s *CatalogService) ListBlogs(ctx context.Context, q models.PageQuery) (models.Page[models.Blog], error) {
	return s.api.ListBlogs(ctx, clampPage(q))
}

func (s *CatalogService) GetBlog(ctx context.Context, id string) (models.Blog, error) {
	blog, err := s.api.GetBlog(ctx, id)
	if errors.Is(err, api.ErrNotFound) {
		return models.Blog{}, fmt.Errorf("%w: %s", ErrBlogNotFound, id)
	}
	return blog, err
}

func (s *CatalogService) ListReviews(ctx context.Context, dishID string, q models.PageQuery) (models.Page[models.Review], error) {
	page, err := s.api.ListReviews(ctx, dishID, clampPage(q))
	if errors.Is(err, api.ErrNotFound) {
		return models.Page[models.Review]{}, fmt.Errorf("%w: %s", ErrDishNotFound, dishID)
	}
	return page, err
}

// CreateReview posts a review as the signed-in user.
func (s *CatalogService) CreateReview(ctx context.Context, review models.Review) (models.Review, error) {
	userID, ok := s.identity.CurrentUserID(ctx)
	if !ok {
		return models.Review{}, ErrNotSignedIn
	}
	if review.Rating < 1 || review.Rating > 5 {
		return models.Review{}, ErrInvalidReview
	}
	review.UserID = userID
	review.Comment = strings.TrimSpace(review.Comment)

	created, err := s.api.CreateReview(ctx, review)
	if errors.Is(err, api.ErrNotFound) {
		return models.Review{}, fmt.Errorf("%w: %s", ErrDishNotFound, review.DishID)
	}
	return created, err
}

func clampPage(q models.PageQuery) models.PageQuery {
	if q.PageSize <= 0 || q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	if q.PageNo < 0 {
		q.PageNo = 0
	}
	if d := strings.ToLower(q.SortDir); d != "" && d != "asc" && d != "desc" {
		q.SortDir = ""
	}
	return q
}
