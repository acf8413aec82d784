// Package products keeps the paged, filtered product listing consistent
// under concurrent refetches. Every fetch carries a sequence number; only
// the latest sequence is allowed to publish its result, so a slow stale
// response can never overwrite a newer page.
package products

import (
	"context"
	"fmt"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openinv/invctl/internal/api"
	"github.com/openinv/invctl/internal/serviceerr"
)

// Patch is a partial filter update. Nil fields are left as they are.
// Setting anything other than the page jumps back to the first page.
type Patch struct {
	Page          *int
	PageSize      *int
	Search        *string
	CategoryID    *int64
	ClearCategory bool
	LowStockOnly  *bool
}

type State struct {
	Filters    api.ProductFilters
	Items      []api.Product
	Total      int
	TotalPages int
}

type Store struct {
	api *api.Client

	mu         sync.Mutex
	filters    api.ProductFilters
	items      []api.Product
	total      int
	totalPages int

	seq    uint64
	cancel context.CancelFunc
}

func NewStore(apiClient *api.Client, pageSize int) *Store {
	return &Store{
		api:     apiClient,
		filters: api.ProductFilters{Page: 1, PageSize: pageSize},
	}
}

// State returns a snapshot. Items is a copy; callers may keep it.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]api.Product, len(s.items))
	copy(items, s.items)

	return State{
		Filters:    s.filters,
		Items:      items,
		Total:      s.total,
		TotalPages: s.totalPages,
	}
}

// SetFilters merges the patch and refetches. A patch that sets anything
// besides the page resets pagination to page 1; only a page-only patch
// keeps the other filters and moves within the current result set.
func (s *Store) SetFilters(ctx context.Context, patch Patch) error {
	s.mu.Lock()

	reset := false
	if patch.PageSize != nil {
		s.filters.PageSize = *patch.PageSize
		reset = true
	}
	if patch.Search != nil {
		s.filters.Search = *patch.Search
		reset = true
	}
	if patch.ClearCategory {
		s.filters.CategoryID = nil
		reset = true
	} else if patch.CategoryID != nil {
		id := *patch.CategoryID
		s.filters.CategoryID = &id
		reset = true
	}
	if patch.LowStockOnly != nil {
		s.filters.LowStockOnly = *patch.LowStockOnly
		reset = true
	}

	switch {
	case reset:
		// Setting any filter restarts the listing from the top, even when
		// the value happens to match the current one.
		s.filters.Page = 1
	case patch.Page != nil:
		s.filters.Page = max(*patch.Page, 1)
	}

	s.mu.Unlock()

	return s.Fetch(ctx)
}

// Fetch loads the listing for the current filters. Starting a new fetch
// cancels the previous in-flight one; if a response arrives after it has
// been superseded it is dropped and the call reports ErrSuperseded. A
// failed fetch keeps the previously published items visible.
func (s *Store) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	filters := s.filters
	s.mu.Unlock()

	list, err := s.api.ListProducts(fetchCtx, filters)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		slogctx.Debug(ctx, "Dropping superseded product fetch", "seq", seq, "latest", s.seq)
		return fmt.Errorf("product fetch %d: %w", seq, serviceerr.ErrSuperseded)
	}

	if err != nil {
		// stale-but-valid beats empty
		return err
	}

	s.items = list.Items
	s.total = list.Total
	s.totalPages = list.TotalPages
	return nil
}

// UpdateQuantity patches one product's stock level and folds the backend's
// answer into the published listing without disturbing its neighbours.
func (s *Store) UpdateQuantity(ctx context.Context, id int64, quantity int) (api.Product, error) {
	updated, err := s.api.UpdateProductQuantity(ctx, id, quantity)
	if err != nil {
		return api.Product{}, err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = updated
			break
		}
	}
	s.mu.Unlock()

	return updated, nil
}
