// Package api is the typed client for the inventory backend's REST API.
// All transport, credential and retry concerns live in the gateway; this
// package only shapes requests and decodes responses. Read-mostly aggregate
// endpoints are served from a short-lived TTL cache that writes invalidate.
package api

import (
	"context"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/openinv/invctl/internal/gateway"
)

type Client struct {
	gw    *gateway.Gateway
	cache *gocache.Cache
}

// New builds the API client. ttl bounds how stale cached aggregate reads
// (dashboard, categories) may get; cleanup is the cache's janitor interval.
func New(gw *gateway.Gateway, ttl, cleanup time.Duration) *Client {
	return &Client{
		gw:    gw,
		cache: gocache.New(ttl, cleanup),
	}
}

const (
	cacheKeyCategories    = "categories"
	cacheKeyStats         = "dashboard/stats"
	cacheKeyCategoryValue = "dashboard/category-value"
)

// getJSON performs a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, req gateway.Request, out any) error {
	req.Method = http.MethodGet
	resp, err := c.gw.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}
