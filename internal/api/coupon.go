package api

import (
	"context"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
)

// ListUnusedCoupons implements coupon.Source.
func (c *Client) ListUnusedCoupons(ctx context.Context, userID string) ([]models.Coupon, error) {
	page, err := getPage[models.Coupon](ctx, c, "/coupons/not-used/user/"+escape(userID), nil, "coupons")
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}
