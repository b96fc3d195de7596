package api

import (
	"context"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
)

// SignUp registers a new account.
func (c *Client) SignUp(ctx context.Context, req models.SignUpRequest) (models.User, error) {
	var user models.User
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/sign-up", body: req, bare: true}, &user)
	return user, err
}

// SignIn exchanges credentials for a token pair.
func (c *Client) SignIn(ctx context.Context, req models.SignInRequest) (models.Tokens, error) {
	var tokens models.Tokens
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/sign-in", body: req, bare: true}, &tokens)
	return tokens, err
}

// RefreshToken implements session.Refresher.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (models.Tokens, error) {
	var tokens models.Tokens
	body := map[string]string{"refreshToken": refreshToken}
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/refresh-token", body: body, bare: true}, &tokens)
	return tokens, err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, call{method: http.MethodPost, path: "/auth/forgot-password", body: body, bare: true}, nil)
}

func (c *Client) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/auth/change-password", body: req}, nil)
}

// Profile returns the signed-in user.
func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var user models.User
	err := c.do(ctx, call{method: http.MethodGet, path: "/users/profile"}, &user)
	return user, err
}

func (c *Client) UpdateProfile(ctx context.Context, user models.User) (models.User, error) {
	var updated models.User
	err := c.do(ctx, call{method: http.MethodPut, path: "/users/profile", body: user}, &updated)
	return updated, err
}
