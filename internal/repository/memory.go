package repository

import (
	"context"
	"sync"
	"time"

	"daehyub/dealwatcher/internal/domain"
)

// MemoryRepository is an in-memory DealRepository for development and
// tests. Safe for concurrent use.
type MemoryRepository struct {
	mu       sync.RWMutex
	deals    map[string]domain.Deal
	products map[string]domain.Product
	offers   map[string]struct{}
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		deals:    make(map[string]domain.Deal),
		products: make(map[string]domain.Product),
		offers:   make(map[string]struct{}),
	}
}

// SeedDeal inserts a deal directly, bypassing the offer index checks
func (r *MemoryRepository) SeedDeal(deal domain.Deal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deals[deal.ID] = deal
	if deal.OfferURL != "" {
		r.offers[deal.OfferURL] = struct{}{}
	}
	if deal.ItemID != "" {
		r.offers[string(deal.Store)+":"+deal.ItemID] = struct{}{}
	}
}

// SeedProduct inserts a product directly
func (r *MemoryRepository) SeedProduct(product domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
}

// GetDealByID returns a single deal
func (r *MemoryRepository) GetDealByID(ctx context.Context, id string) (*domain.Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	deal, ok := r.deals[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := deal
	return &copied, nil
}

// GetDealsDueForRefresh returns up to limit non-expired, non-sold deals
func (r *MemoryRepository) GetDealsDueForRefresh(ctx context.Context, limit int) ([]domain.Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	due := make([]domain.Deal, 0, limit)
	for _, deal := range r.deals {
		if deal.Expired || deal.Sold {
			continue
		}
		due = append(due, deal)
		if len(due) >= limit {
			break
		}
	}
	return due, nil
}

// GetExpiryCandidates returns deals past expiry and not yet marked expired
func (r *MemoryRepository) GetExpiryCandidates(ctx context.Context, now time.Time) ([]domain.Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []domain.Deal
	for _, deal := range r.deals {
		if !deal.Expired && deal.IsExpiredAt(now) {
			candidates = append(candidates, deal)
		}
	}
	return candidates, nil
}

// GetActiveProducts returns products eligible for new-listing discovery
func (r *MemoryRepository) GetActiveProducts(ctx context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var products []domain.Product
	for _, product := range r.products {
		if product.Active {
			products = append(products, product)
		}
	}
	return products, nil
}

// UpdateDealSignals persists freshly scraped price/stock state
func (r *MemoryRepository) UpdateDealSignals(ctx context.Context, id string, price *float64, currency string, inStock *bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	deal, ok := r.deals[id]
	if !ok {
		return ErrNotFound
	}
	deal.Price = price
	if currency != "" {
		deal.Currency = currency
	}
	deal.InStock = inStock
	deal.UpdatedAt = time.Now()
	r.deals[id] = deal
	return nil
}

// MarkDealSold transitions a deal to sold
func (r *MemoryRepository) MarkDealSold(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	deal, ok := r.deals[id]
	if !ok {
		return ErrNotFound
	}
	deal.Sold = true
	deal.UpdatedAt = time.Now()
	r.deals[id] = deal
	return nil
}

// MarkDealExpired transitions a deal to expired
func (r *MemoryRepository) MarkDealExpired(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	deal, ok := r.deals[id]
	if !ok {
		return ErrNotFound
	}
	deal.Expired = true
	deal.UpdatedAt = time.Now()
	r.deals[id] = deal
	return nil
}

// HasListing reports whether an offer is already tracked
func (r *MemoryRepository) HasListing(ctx context.Context, store domain.StoreType, url, itemID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if url != "" {
		if _, ok := r.offers[url]; ok {
			return true, nil
		}
	}
	if itemID != "" {
		if _, ok := r.offers[string(store)+":"+itemID]; ok {
			return true, nil
		}
	}
	return false, nil
}

// CreateListing persists a newly discovered listing
func (r *MemoryRepository) CreateListing(ctx context.Context, deal *domain.Deal) error {
	deal.UpdatedAt = time.Now()
	r.SeedDeal(*deal)
	return nil
}
