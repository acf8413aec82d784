package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/openinv/invctl/internal/gateway"
)

// ProductFilters mirrors the list endpoint's query parameters. The zero
// value of an optional filter means "not applied".
type ProductFilters struct {
	Page         int
	PageSize     int
	Search       string
	CategoryID   *int64
	LowStockOnly bool
}

func (f ProductFilters) query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(f.Page, 1)))
	q.Set("page_size", strconv.Itoa(f.PageSize))
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.CategoryID != nil {
		q.Set("category_id", strconv.FormatInt(*f.CategoryID, 10))
	}
	if f.LowStockOnly {
		q.Set("low_stock_only", "true")
	}
	return q
}

// ListProducts fetches one page of the filtered product list.
func (c *Client) ListProducts(ctx context.Context, filters ProductFilters) (ProductList, error) {
	var list ProductList
	req := gateway.Request{Path: "/products", Query: filters.query()}
	if err := c.getJSON(ctx, req, &list); err != nil {
		return ProductList{}, fmt.Errorf("listing products: %w", err)
	}
	return list, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (Product, error) {
	var product Product
	req := gateway.Request{Path: fmt.Sprintf("/products/%d", id)}
	if err := c.getJSON(ctx, req, &product); err != nil {
		return Product{}, fmt.Errorf("fetching product %d: %w", id, err)
	}
	return product, nil
}

func (c *Client) CreateProduct(ctx context.Context, input ProductCreate) (Product, error) {
	resp, err := c.gw.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/products",
		JSON:   input,
	})
	if err != nil {
		return Product{}, fmt.Errorf("creating product: %w", err)
	}
	c.invalidateProductCaches()

	var product Product
	if err := resp.Decode(&product); err != nil {
		return Product{}, err
	}
	return product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, input ProductUpdate) (Product, error) {
	resp, err := c.gw.Do(ctx, gateway.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/products/%d", id),
		JSON:   input,
	})
	if err != nil {
		return Product{}, fmt.Errorf("updating product %d: %w", id, err)
	}
	c.invalidateProductCaches()

	var product Product
	if err := resp.Decode(&product); err != nil {
		return Product{}, err
	}
	return product, nil
}

// UpdateProductQuantity patches only the quantity. Staff may call this even
// where full updates are admin-only.
func (c *Client) UpdateProductQuantity(ctx context.Context, id int64, quantity int) (Product, error) {
	resp, err := c.gw.Do(ctx, gateway.Request{
		Method: http.MethodPatch,
		Path:   fmt.Sprintf("/products/%d/quantity", id),
		JSON:   map[string]int{"quantity": quantity},
	})
	if err != nil {
		return Product{}, fmt.Errorf("updating quantity of product %d: %w", id, err)
	}
	c.invalidateProductCaches()

	var product Product
	if err := resp.Decode(&product); err != nil {
		return Product{}, err
	}
	return product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	req := gateway.Request{Method: http.MethodDelete, Path: fmt.Sprintf("/products/%d", id)}
	if _, err := c.gw.Do(ctx, req); err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	c.invalidateProductCaches()
	return nil
}

// ExportProductsCSV returns the raw CSV payload of all products.
func (c *Client) ExportProductsCSV(ctx context.Context) ([]byte, error) {
	resp, err := c.gw.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/products/export/csv"})
	if err != nil {
		return nil, fmt.Errorf("exporting products: %w", err)
	}
	return resp.Body, nil
}

// ImportProductsCSV uploads a CSV file; rows upsert by SKU. Row-level
// failures are reported in the summary, not as an error.
func (c *Client) ImportProductsCSV(ctx context.Context, filename string, content []byte) (ImportSummary, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return ImportSummary{}, fmt.Errorf("building multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return ImportSummary{}, fmt.Errorf("building multipart body: %w", err)
	}

	resp, err := c.gw.Do(ctx, gateway.Request{
		Method:      http.MethodPost,
		Path:        "/products/import/csv",
		Body:        buf.Bytes(),
		ContentType: mw.FormDataContentType(),
	})
	if err != nil {
		return ImportSummary{}, fmt.Errorf("importing products: %w", err)
	}
	c.invalidateProductCaches()

	var summary ImportSummary
	if err := resp.Decode(&summary); err != nil {
		return ImportSummary{}, err
	}
	return summary, nil
}

// invalidateProductCaches drops aggregate views that product writes skew.
func (c *Client) invalidateProductCaches() {
	c.cache.Delete(cacheKeyStats)
	c.cache.Delete(cacheKeyCategoryValue)
	c.cache.Delete(cacheKeyCategories)
}
