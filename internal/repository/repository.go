package repository

import (
	"context"
	"errors"
	"time"

	"daehyub/dealwatcher/internal/domain"
)

// ErrNotFound is returned when a deal does not exist
var ErrNotFound = errors.New("deal not found")

// DealRepository is the persistence boundary for deals and products.
// It is the single source of truth for deal state: the orchestrator only
// mutates persisted state through these write operations, and a
// last-write-wins policy is acceptable since price/stock are re-derivable
// on the next cycle.
type DealRepository interface {
	// GetDealByID returns a single deal
	GetDealByID(ctx context.Context, id string) (*domain.Deal, error)

	// GetDealsDueForRefresh returns up to limit non-expired deals
	GetDealsDueForRefresh(ctx context.Context, limit int) ([]domain.Deal, error)

	// GetExpiryCandidates returns deals whose expiration timestamp has
	// passed and that are not yet marked expired
	GetExpiryCandidates(ctx context.Context, now time.Time) ([]domain.Deal, error)

	// GetActiveProducts returns products eligible for new-listing discovery
	GetActiveProducts(ctx context.Context) ([]domain.Product, error)

	// UpdateDealSignals persists freshly scraped price/stock state
	UpdateDealSignals(ctx context.Context, id string, price *float64, currency string, inStock *bool) error

	// MarkDealSold transitions a deal to sold
	MarkDealSold(ctx context.Context, id string) error

	// MarkDealExpired transitions a deal to expired
	MarkDealExpired(ctx context.Context, id string) error

	// HasListing reports whether an offer is already tracked, matched by
	// URL or store-native item ID
	HasListing(ctx context.Context, store domain.StoreType, url, itemID string) (bool, error)

	// CreateListing persists a newly discovered listing
	CreateListing(ctx context.Context, deal *domain.Deal) error
}
