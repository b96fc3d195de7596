package api

import (
	"context"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
)

// CreateOrder submits a draft. The idempotency key lets the backend drop a
// replayed submission.
func (c *Client) CreateOrder(ctx context.Context, draft models.OrderDraft, idempotencyKey string) (models.Order, error) {
	headers := http.Header{}
	if idempotencyKey != "" {
		headers.Set("Idempotency-Key", idempotencyKey)
	}
	var order models.Order
	err := c.do(ctx, call{method: http.MethodPost, path: "/orders", body: draft, headers: headers}, &order)
	return order, err
}

func (c *Client) ListOrders(ctx context.Context, userID string, q models.PageQuery) (models.Page[models.Order], error) {
	return getPage[models.Order](ctx, c, "/orders/user/"+escape(userID), q.Values(), "orders")
}
