package api

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse is what the login and refresh endpoints return. In cookie
// deployments RefreshToken is empty and the refresh credential arrives as a
// Set-Cookie header instead.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	User         User   `json:"user"`
}

type Category struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	ProductCount int       `json:"product_count"`
}

type Product struct {
	ID                int64     `json:"id"`
	SKU               string    `json:"sku"`
	Name              string    `json:"name"`
	Description       *string   `json:"description"`
	Quantity          int       `json:"quantity"`
	UnitPrice         float64   `json:"unit_price"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	CategoryID        *int64    `json:"category_id"`
	Category          *Category `json:"category"`
	IsLowStock        bool      `json:"is_low_stock"`
	TotalValue        float64   `json:"total_value"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ProductList struct {
	Items      []Product `json:"items"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

type ProductCreate struct {
	SKU               string  `json:"sku"`
	Name              string  `json:"name"`
	Description       *string `json:"description,omitempty"`
	Quantity          int     `json:"quantity"`
	UnitPrice         float64 `json:"unit_price"`
	LowStockThreshold int     `json:"low_stock_threshold"`
	CategoryID        *int64  `json:"category_id,omitempty"`
}

// ProductUpdate is a partial update; nil fields are left untouched.
type ProductUpdate struct {
	SKU               *string  `json:"sku,omitempty"`
	Name              *string  `json:"name,omitempty"`
	Description       *string  `json:"description,omitempty"`
	Quantity          *int     `json:"quantity,omitempty"`
	UnitPrice         *float64 `json:"unit_price,omitempty"`
	LowStockThreshold *int     `json:"low_stock_threshold,omitempty"`
	CategoryID        *int64   `json:"category_id,omitempty"`
}

type CategoryCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type CategoryUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type UserCreate struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type DashboardStats struct {
	TotalProducts       int     `json:"total_products"`
	TotalCategories     int     `json:"total_categories"`
	LowStockCount       int     `json:"low_stock_count"`
	TotalInventoryValue float64 `json:"total_inventory_value"`
	TotalQuantity       int     `json:"total_quantity"`
}

type LowStockItem struct {
	ID                int64   `json:"id"`
	SKU               string  `json:"sku"`
	Name              string  `json:"name"`
	Quantity          int     `json:"quantity"`
	LowStockThreshold int     `json:"low_stock_threshold"`
	CategoryName      *string `json:"category_name"`
}

type CategoryValue struct {
	CategoryID    *int64  `json:"category_id"`
	CategoryName  string  `json:"category_name"`
	ProductCount  int     `json:"product_count"`
	TotalQuantity int     `json:"total_quantity"`
	TotalValue    float64 `json:"total_value"`
}

// SmartSearchResult carries the backend's interpretation of a natural
// language query. ParseMethod reports whether an LLM or the fallback parser
// handled the query; the client only displays it.
type SmartSearchResult struct {
	Results     []Product      `json:"results"`
	Total       int            `json:"total"`
	ParsedQuery map[string]any `json:"parsed_query"`
	ParseMethod string         `json:"parse_method"`
}

type Forecast struct {
	ProductID         int64    `json:"product_id"`
	SKU               string   `json:"sku"`
	Name              string   `json:"name"`
	CurrentQuantity   int      `json:"current_quantity"`
	AvgDailySales     float64  `json:"avg_daily_sales"`
	DaysUntilStockout *float64 `json:"days_until_stockout"`
	SuggestedReorder  int      `json:"suggested_reorder"`
	Urgency           string   `json:"urgency"`
	CategoryName      *string  `json:"category_name"`
}

// ImportSummary is the outcome of a CSV import: per-row failures end up in
// Errors, they do not abort the whole import.
type ImportSummary struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}
