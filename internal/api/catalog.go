package api

import (
	"context"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
)

func (c *Client) ListDishes(ctx context.Context, q models.PageQuery) (models.Page[models.Dish], error) {
	return getPage[models.Dish](ctx, c, "/dishes", q.Values(), "dishes")
}

func (c *Client) GetDish(ctx context.Context, id string) (models.Dish, error) {
	var dish models.Dish
	err := c.do(ctx, call{method: http.MethodGet, path: "/dishes/" + escape(id)}, &dish)
	return dish, err
}

// AvailableQuantity reads the live stock of a dish.
func (c *Client) AvailableQuantity(ctx context.Context, dishID string) (int, error) {
	dish, err := c.GetDish(ctx, dishID)
	if err != nil {
		return 0, err
	}
	return dish.AvailableQuantity, nil
}

func (c *Client) ListBlogs(ctx context.Context, q models.PageQuery) (models.Page[models.Blog], error) {
	return getPage[models.Blog](ctx, c, "/blogs", q.Values(), "blogs")
}

func (c *Client) GetBlog(ctx context.Context, id string) (models.Blog, error) {
	var blog models.Blog
	err := c.do(ctx, call{method: http.MethodGet, path: "/blogs/" + escape(id)}, &blog)
	return blog, err
}

// ListReviews pages through the reviews of one dish.
func (c *Client) ListReviews(ctx context.Context, dishID string, q models.PageQuery) (models.Page[models.Review], error) {
	query := q.Values()
	query.Set("dishId", dishID)
	return getPage[models.Review](ctx, c, "/reviews", query, "reviews")
}

func (c *Client) CreateReview(ctx context.Context, review models.Review) (models.Review, error) {
	var created models.Review
	err := c.do(ctx, call{method: http.MethodPost, path: "/reviews", body: review}, &created)
	return created, err
}
