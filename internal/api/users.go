package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openinv/invctl/internal/gateway"
)

// User management is admin-only on the backend; a staff credential gets a
// forbidden error, surfaced like any other resource error.

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.getJSON(ctx, gateway.Request{Path: "/users"}, &users); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (User, error) {
	var user User
	req := gateway.Request{Path: fmt.Sprintf("/users/%d", id)}
	if err := c.getJSON(ctx, req, &user); err != nil {
		return User{}, fmt.Errorf("fetching user %d: %w", id, err)
	}
	return user, nil
}

func (c *Client) CreateUser(ctx context.Context, input UserCreate) (User, error) {
	resp, err := c.gw.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/users",
		JSON:   input,
	})
	if err != nil {
		return User{}, fmt.Errorf("creating user: %w", err)
	}

	var user User
	if err := resp.Decode(&user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, input UserUpdate) (User, error) {
	resp, err := c.gw.Do(ctx, gateway.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/users/%d", id),
		JSON:   input,
	})
	if err != nil {
		return User{}, fmt.Errorf("updating user %d: %w", id, err)
	}

	var user User
	if err := resp.Decode(&user); err != nil {
		return User{}, err
	}
	return user, nil
}

// DeactivateUser disables an account. The backend soft-deletes; the row and
// its audit trail survive.
func (c *Client) DeactivateUser(ctx context.Context, id int64) error {
	req := gateway.Request{Method: http.MethodDelete, Path: fmt.Sprintf("/users/%d", id)}
	if _, err := c.gw.Do(ctx, req); err != nil {
		return fmt.Errorf("deactivating user %d: %w", id, err)
	}
	return nil
}
