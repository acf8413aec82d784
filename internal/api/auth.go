package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/openinv/invctl/internal/gateway"
)

// Login authenticates with the backend. The returned header carries any
// Set-Cookie issued alongside the tokens; cookie-mode deployments extract
// the refresh cookie from it. Login is never retried: a rejected password
// is not recoverable by repetition.
func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, http.Header, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	resp, err := c.gw.Do(ctx, gateway.Request{
		Method:  http.MethodPost,
		Path:    "/auth/login",
		Form:    form,
		NoRetry: true,
	})
	if err != nil {
		return TokenResponse{}, nil, fmt.Errorf("logging in: %w", err)
	}

	var tokens TokenResponse
	if err := resp.Decode(&tokens); err != nil {
		return TokenResponse{}, nil, err
	}
	return tokens, resp.Header, nil
}

// Me fetches the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	if err := c.getJSON(ctx, gateway.Request{Path: "/auth/me"}, &user); err != nil {
		return User{}, fmt.Errorf("fetching current user: %w", err)
	}
	return user, nil
}

// Logout invalidates the server-side session state.
func (c *Client) Logout(ctx context.Context) error {
	req := gateway.Request{Method: http.MethodPost, Path: "/auth/logout"}
	if _, err := c.gw.Do(ctx, req); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}
