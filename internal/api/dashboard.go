package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/openinv/invctl/internal/gateway"
)

// DashboardStats returns the aggregate inventory numbers, cached for the
// configured TTL.
func (c *Client) DashboardStats(ctx context.Context) (DashboardStats, error) {
	if hit, ok := c.cache.Get(cacheKeyStats); ok {
		if stats, ok := hit.(DashboardStats); ok {
			return stats, nil
		}
	}

	var stats DashboardStats
	if err := c.getJSON(ctx, gateway.Request{Path: "/dashboard/stats"}, &stats); err != nil {
		return DashboardStats{}, fmt.Errorf("fetching dashboard stats: %w", err)
	}
	c.cache.SetDefault(cacheKeyStats, stats)
	return stats, nil
}

// LowStock lists the products closest to their reorder threshold.
func (c *Client) LowStock(ctx context.Context, limit int) ([]LowStockItem, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var items []LowStockItem
	req := gateway.Request{Path: "/dashboard/low-stock", Query: q}
	if err := c.getJSON(ctx, req, &items); err != nil {
		return nil, fmt.Errorf("fetching low stock items: %w", err)
	}
	return items, nil
}

// CategoryValues returns inventory value grouped by category, cached for
// the configured TTL.
func (c *Client) CategoryValues(ctx context.Context) ([]CategoryValue, error) {
	if hit, ok := c.cache.Get(cacheKeyCategoryValue); ok {
		if values, ok := hit.([]CategoryValue); ok {
			return values, nil
		}
	}

	var values []CategoryValue
	if err := c.getJSON(ctx, gateway.Request{Path: "/dashboard/category-value"}, &values); err != nil {
		return nil, fmt.Errorf("fetching category values: %w", err)
	}
	c.cache.SetDefault(cacheKeyCategoryValue, values)
	return values, nil
}

// SmartSearch sends a natural language query; interpretation happens
// entirely server-side.
func (c *Client) SmartSearch(ctx context.Context, query string) (SmartSearchResult, error) {
	resp, err := c.gw.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/search/smart",
		JSON:   map[string]string{"query": query},
	})
	if err != nil {
		return SmartSearchResult{}, fmt.Errorf("smart search: %w", err)
	}

	var result SmartSearchResult
	if err := resp.Decode(&result); err != nil {
		return SmartSearchResult{}, err
	}
	return result, nil
}

// Forecasts returns per-product reorder forecasts, most urgent first.
// urgency filters to one of "critical", "warning" or "ok"; empty means all.
func (c *Client) Forecasts(ctx context.Context, limit int, urgency string) ([]Forecast, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if urgency != "" {
		q.Set("urgency_filter", urgency)
	}

	var forecasts []Forecast
	req := gateway.Request{Path: "/analytics/forecast", Query: q}
	if err := c.getJSON(ctx, req, &forecasts); err != nil {
		return nil, fmt.Errorf("fetching forecasts: %w", err)
	}
	return forecasts, nil
}
