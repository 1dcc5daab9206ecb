package repository

import (
	"context"
	"encoding/json"
	"time"

	"daehyub/dealwatcher/internal/domain"
	pkgerr "daehyub/dealwatcher/pkg/errors"

	"github.com/redis/go-redis/v9"
)

const (
	dealKeyPrefix    = "deal:"
	productKeyPrefix = "product:"
	dealIndexKey     = "deals"
	productIndexKey  = "products"
	offerIndexKey    = "offers"
)

// RedisRepository implements DealRepository over Redis. Deals and
// products are stored as JSON values with set-based indexes; offer URLs
// and store-native item IDs share one dedupe index.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis-backed repository
func NewRedisRepository(addr string, db int) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
	}
}

// GetDealByID returns a single deal
func (r *RedisRepository) GetDealByID(ctx context.Context, id string) (*domain.Deal, error) {
	raw, err := r.client.Get(ctx, dealKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, pkgerr.NewRepository(id, "failed to load deal", err)
	}

	var deal domain.Deal
	if err := json.Unmarshal(raw, &deal); err != nil {
		return nil, pkgerr.NewRepository(id, "failed to decode deal", err)
	}
	return &deal, nil
}

// GetDealsDueForRefresh returns up to limit non-expired, non-sold deals
func (r *RedisRepository) GetDealsDueForRefresh(ctx context.Context, limit int) ([]domain.Deal, error) {
	deals, err := r.loadDeals(ctx)
	if err != nil {
		return nil, err
	}

	due := make([]domain.Deal, 0, limit)
	for _, deal := range deals {
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
func (r *RedisRepository) GetExpiryCandidates(ctx context.Context, now time.Time) ([]domain.Deal, error) {
	deals, err := r.loadDeals(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []domain.Deal
	for _, deal := range deals {
		if !deal.Expired && deal.IsExpiredAt(now) {
			candidates = append(candidates, deal)
		}
	}
	return candidates, nil
}

// GetActiveProducts returns products eligible for new-listing discovery
func (r *RedisRepository) GetActiveProducts(ctx context.Context) ([]domain.Product, error) {
	ids, err := r.client.SMembers(ctx, productIndexKey).Result()
	if err != nil {
		return nil, pkgerr.NewRepository("", "failed to list products", err)
	}

	var products []domain.Product
	for _, id := range ids {
		raw, err := r.client.Get(ctx, productKeyPrefix+id).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, pkgerr.NewRepository(id, "failed to load product", err)
		}
		var product domain.Product
		if err := json.Unmarshal(raw, &product); err != nil {
			return nil, pkgerr.NewRepository(id, "failed to decode product", err)
		}
		if product.Active {
			products = append(products, product)
		}
	}
	return products, nil
}

// UpdateDealSignals persists freshly scraped price/stock state
func (r *RedisRepository) UpdateDealSignals(ctx context.Context, id string, price *float64, currency string, inStock *bool) error {
	deal, err := r.GetDealByID(ctx, id)
	if err != nil {
		return err
	}

	deal.Price = price
	if currency != "" {
		deal.Currency = currency
	}
	deal.InStock = inStock
	deal.UpdatedAt = time.Now()

	return r.saveDeal(ctx, deal)
}

// MarkDealSold transitions a deal to sold
func (r *RedisRepository) MarkDealSold(ctx context.Context, id string) error {
	deal, err := r.GetDealByID(ctx, id)
	if err != nil {
		return err
	}

	deal.Sold = true
	deal.UpdatedAt = time.Now()
	return r.saveDeal(ctx, deal)
}

// MarkDealExpired transitions a deal to expired
func (r *RedisRepository) MarkDealExpired(ctx context.Context, id string) error {
	deal, err := r.GetDealByID(ctx, id)
	if err != nil {
		return err
	}

	deal.Expired = true
	deal.UpdatedAt = time.Now()
	return r.saveDeal(ctx, deal)
}

// HasListing reports whether an offer is already tracked
func (r *RedisRepository) HasListing(ctx context.Context, store domain.StoreType, url, itemID string) (bool, error) {
	if url != "" {
		tracked, err := r.client.SIsMember(ctx, offerIndexKey, url).Result()
		if err != nil {
			return false, pkgerr.NewRepository(url, "failed to check offer index", err)
		}
		if tracked {
			return true, nil
		}
	}

	if itemID != "" {
		tracked, err := r.client.SIsMember(ctx, offerIndexKey, string(store)+":"+itemID).Result()
		if err != nil {
			return false, pkgerr.NewRepository(itemID, "failed to check offer index", err)
		}
		if tracked {
			return true, nil
		}
	}

	return false, nil
}

// CreateListing persists a newly discovered listing
func (r *RedisRepository) CreateListing(ctx context.Context, deal *domain.Deal) error {
	deal.UpdatedAt = time.Now()
	if err := r.saveDeal(ctx, deal); err != nil {
		return err
	}

	if err := r.client.SAdd(ctx, dealIndexKey, deal.ID).Err(); err != nil {
		return pkgerr.NewRepository(deal.ID, "failed to index deal", err)
	}
	if deal.OfferURL != "" {
		if err := r.client.SAdd(ctx, offerIndexKey, deal.OfferURL).Err(); err != nil {
			return pkgerr.NewRepository(deal.ID, "failed to index offer URL", err)
		}
	}
	if deal.ItemID != "" {
		if err := r.client.SAdd(ctx, offerIndexKey, string(deal.Store)+":"+deal.ItemID).Err(); err != nil {
			return pkgerr.NewRepository(deal.ID, "failed to index item ID", err)
		}
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func (r *RedisRepository) saveDeal(ctx context.Context, deal *domain.Deal) error {
	raw, err := json.Marshal(deal)
	if err != nil {
		return pkgerr.NewRepository(deal.ID, "failed to encode deal", err)
	}
	if err := r.client.Set(ctx, dealKeyPrefix+deal.ID, raw, 0).Err(); err != nil {
		return pkgerr.NewRepository(deal.ID, "failed to save deal", err)
	}
	return nil
}

func (r *RedisRepository) loadDeals(ctx context.Context) ([]domain.Deal, error) {
	ids, err := r.client.SMembers(ctx, dealIndexKey).Result()
	if err != nil {
		return nil, pkgerr.NewRepository("", "failed to list deals", err)
	}

	deals := make([]domain.Deal, 0, len(ids))
	for _, id := range ids {
		raw, err := r.client.Get(ctx, dealKeyPrefix+id).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, pkgerr.NewRepository(id, "failed to load deal", err)
		}
		var deal domain.Deal
		if err := json.Unmarshal(raw, &deal); err != nil {
			return nil, pkgerr.NewRepository(id, "failed to decode deal", err)
		}
		deals = append(deals, deal)
	}
	return deals, nil
}
