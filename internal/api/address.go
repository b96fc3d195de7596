package api

import (
	"context"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
)

func (c *Client) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	page, err := getPage[models.Address](ctx, c, "/addresses/user/"+escape(userID), nil, "addresses")
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/addresses/" + escape(id)}, nil)
}
