package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
)

// CreatePaymentURL asks the backend for the gateway redirect of an order.
func (c *Client) CreatePaymentURL(ctx context.Context, orderID string) (string, error) {
	var out struct {
		URL        string `json:"url"`
		PaymentURL string `json:"paymentUrl"`
	}
	if err := c.do(ctx, call{method: http.MethodPost, path: "/payments/create-url/" + escape(orderID)}, &out); err != nil {
		return "", err
	}
	u := out.URL
	if u == "" {
		u = out.PaymentURL
	}
	if u == "" {
		return "", fmt.Errorf("create payment url: %w", ErrUnexpected)
	}
	return u, nil
}

// ConfirmReturn forwards the vnp_* parameters of the gateway redirect and
// returns the backend's verdict.
func (c *Client) ConfirmReturn(ctx context.Context, params url.Values) (models.PaymentReturn, error) {
	forwarded := url.Values{}
	for k, v := range params {
		if strings.HasPrefix(k, "vnp_") {
			forwarded[k] = v
		}
	}
	if len(forwarded) == 0 {
		return models.PaymentReturn{}, &Error{StatusCode: http.StatusBadRequest, Message: "no vnp_ parameters", Err: ErrBadRequest}
	}

	var out models.PaymentReturn
	err := c.do(ctx, call{method: http.MethodGet, path: "/payments/return", query: forwarded}, &out)
	return out, err
}
