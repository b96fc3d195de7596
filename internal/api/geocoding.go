package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
)

// Quote resolves an address line to distance, duration and shipping fee.
func (c *Client) Quote(ctx context.Context, address string) (models.ShippingQuote, error) {
	var quote models.ShippingQuote
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/geocoding/shipping-fee",
		query:  url.Values{"address": {address}},
	}, &quote)
	return quote, err
}
