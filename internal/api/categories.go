package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openinv/invctl/internal/gateway"
)

// ListCategories returns all categories. The result is cached for the
// configured TTL; category and product writes invalidate it.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	if hit, ok := c.cache.Get(cacheKeyCategories); ok {
		if categories, ok := hit.([]Category); ok {
			return categories, nil
		}
	}

	var categories []Category
	if err := c.getJSON(ctx, gateway.Request{Path: "/categories"}, &categories); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	c.cache.SetDefault(cacheKeyCategories, categories)
	return categories, nil
}

func (c *Client) GetCategory(ctx context.Context, id int64) (Category, error) {
	var category Category
	req := gateway.Request{Path: fmt.Sprintf("/categories/%d", id)}
	if err := c.getJSON(ctx, req, &category); err != nil {
		return Category{}, fmt.Errorf("fetching category %d: %w", id, err)
	}
	return category, nil
}

func (c *Client) CreateCategory(ctx context.Context, input CategoryCreate) (Category, error) {
	resp, err := c.gw.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/categories",
		JSON:   input,
	})
	if err != nil {
		return Category{}, fmt.Errorf("creating category: %w", err)
	}
	c.cache.Delete(cacheKeyCategories)

	var category Category
	if err := resp.Decode(&category); err != nil {
		return Category{}, err
	}
	return category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, input CategoryUpdate) (Category, error) {
	resp, err := c.gw.Do(ctx, gateway.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/categories/%d", id),
		JSON:   input,
	})
	if err != nil {
		return Category{}, fmt.Errorf("updating category %d: %w", id, err)
	}
	c.cache.Delete(cacheKeyCategories)

	var category Category
	if err := resp.Decode(&category); err != nil {
		return Category{}, err
	}
	return category, nil
}

// DeleteCategory removes an empty category. The backend rejects categories
// still referenced by products; that rejection surfaces as a validation
// error with the backend's message.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	req := gateway.Request{Method: http.MethodDelete, Path: fmt.Sprintf("/categories/%d", id)}
	if _, err := c.gw.Do(ctx, req); err != nil {
		return fmt.Errorf("deleting category %d: %w", id, err)
	}
	c.cache.Delete(cacheKeyCategories)
	return nil
}
