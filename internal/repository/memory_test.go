package repository

import (
	"context"
	"testing"
	"time"

	"daehyub/dealwatcher/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_DealLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.GetDealByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	price := 100.0
	repo.SeedDeal(domain.Deal{ID: "d1", OfferURL: "https://x/1", Price: &price, Store: domain.StoreEbay})

	deal, err := repo.GetDealByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "https://x/1", deal.OfferURL)

	newPrice := 89.99
	inStock := true
	require.NoError(t, repo.UpdateDealSignals(ctx, "d1", &newPrice, "USD", &inStock))

	deal, err = repo.GetDealByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, 89.99, *deal.Price)
	assert.Equal(t, "USD", deal.Currency)
	assert.True(t, *deal.InStock)

	require.NoError(t, repo.MarkDealSold(ctx, "d1"))
	deal, _ = repo.GetDealByID(ctx, "d1")
	assert.True(t, deal.Sold)

	// Sold deals drop out of the refresh working set
	due, err := repo.GetDealsDueForRefresh(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestMemoryRepository_ExpiryCandidates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now()

	repo.SeedDeal(domain.Deal{ID: "past", ExpiresAt: now.Add(-time.Hour)})
	repo.SeedDeal(domain.Deal{ID: "future", ExpiresAt: now.Add(time.Hour)})
	repo.SeedDeal(domain.Deal{ID: "open"})

	candidates, err := repo.GetExpiryCandidates(ctx, now)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "past", candidates[0].ID)

	require.NoError(t, repo.MarkDealExpired(ctx, "past"))

	candidates, err = repo.GetExpiryCandidates(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestMemoryRepository_ListingIndex(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	exists, err := repo.HasListing(ctx, domain.StoreEbay, "https://x/1", "item-1")
	require.NoError(t, err)
	assert.False(t, exists)

	deal := &domain.Deal{ID: "ebay:item-1", OfferURL: "https://x/1", ItemID: "item-1", Store: domain.StoreEbay}
	require.NoError(t, repo.CreateListing(ctx, deal))

	exists, err = repo.HasListing(ctx, domain.StoreEbay, "https://x/1", "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.HasListing(ctx, domain.StoreEbay, "", "item-1")
	require.NoError(t, err)
	assert.True(t, exists)

	// Same item ID under a different store is a different listing
	exists, err = repo.HasListing(ctx, domain.StoreAmazon, "", "item-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryRepository_ActiveProducts(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	repo.SeedProduct(domain.Product{ID: "p1", Name: "Widget", Active: true})
	repo.SeedProduct(domain.Product{ID: "p2", Name: "Retired", Active: false})

	products, err := repo.GetActiveProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
}
