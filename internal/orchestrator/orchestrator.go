package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"daehyub/dealwatcher/internal/domain"
	"daehyub/dealwatcher/internal/repository"
	"daehyub/dealwatcher/internal/scraper"
	"daehyub/dealwatcher/internal/store"
	"daehyub/dealwatcher/logger"
)

// Newly ingested listings get a fixed monitoring window before the
// expiration sweep picks them up.
const defaultListingTTL = 30 * 24 * time.Hour

// ListingScraper is the scrape capability the orchestrator drives.
// A nil result means "no usable signal this cycle, try again later".
type ListingScraper interface {
	Scrape(ctx context.Context, url string, selectors []string) *scraper.Result
}

// Query drives new-listing discovery for one product
type Query struct {
	ProductID string
	Text      string
}

// Orchestrator iterates the working set of tracked deals, invokes the
// scraper and store clients under a concurrency bound, reconciles results
// against persisted state and emits aggregate run reports. One bad
// listing never aborts a batch.
type Orchestrator struct {
	repo        repository.DealRepository
	scraper     ListingScraper
	stores      map[domain.StoreType]store.Client
	maxInFlight int
	log         *logger.Logger
}

// New creates an orchestrator over the given collaborators. maxInFlight
// is the hard ceiling on concurrent scrapes; values below 1 are raised
// to 1 (fully serialized, the rate-friendly default).
func New(repo repository.DealRepository, scr ListingScraper, clients []store.Client, maxInFlight int) *Orchestrator {
	if maxInFlight < 1 {
		maxInFlight = 1
	}

	stores := make(map[domain.StoreType]store.Client, len(clients))
	for _, client := range clients {
		stores[client.StoreType()] = client
	}

	return &Orchestrator{
		repo:        repo,
		scraper:     scr,
		stores:      stores,
		maxInFlight: maxInFlight,
		log:         logger.ForOrchestrator(),
	}
}

// RefreshDeals selects up to batchSize deals due for refresh and scrapes
// each under the admission gate. Per-item failures are counted and
// logged, never raised. Cancellation before any item starts is a hard
// failure; cancellation mid-run stops admission and returns the partial
// report.
func (o *Orchestrator) RefreshDeals(ctx context.Context, batchSize int) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deals, err := o.repo.GetDealsDueForRefresh(ctx, batchSize)
	if err != nil {
		// Losing the work set is fatal to the run, unlike per-item faults
		return nil, err
	}

	o.log.Info().Int("deals", len(deals)).Int("max_in_flight", o.maxInFlight).Msg("Starting deal refresh")

	counts := &counters{}
	sem := make(chan struct{}, o.maxInFlight)
	var wg sync.WaitGroup

	for i := range deals {
		// Cancellation is observed even while waiting for a slot; items
		// already in flight complete on their own.
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(deal domain.Deal) {
			defer wg.Done()
			defer func() { <-sem }()
			o.refreshDeal(ctx, deal, counts)
		}(deals[i])
	}
	wg.Wait()

	report := counts.snapshot()
	o.log.Info().
		Int64("total", report.Total).
		Int64("updated", report.Updated).
		Int64("expired", report.Expired).
		Int64("sold", report.Sold).
		Int64("errors", report.Errors).
		Msg("Deal refresh finished")

	return report, nil
}

// refreshDeal classifies one deal into exactly one outcome. Precedence:
// expired (time-based, no scrape) > error (missing URL / failed scrape) >
// sold > updated > unchanged. A challenge-blocked scrape is unchanged,
// not stale or sold.
func (o *Orchestrator) refreshDeal(ctx context.Context, deal domain.Deal, counts *counters) {
	counts.total.Add(1)

	if deal.IsExpiredAt(time.Now()) {
		if err := o.repo.MarkDealExpired(ctx, deal.ID); err != nil {
			counts.errors.Add(1)
			o.log.Error().Err(err).Str("deal", deal.ID).Msg("Failed to expire deal")
			return
		}
		counts.expired.Add(1)
		return
	}

	if deal.OfferURL == "" {
		counts.errors.Add(1)
		o.log.Warn().Str("deal", deal.ID).Msg("Deal has no offer URL, cannot refresh")
		return
	}

	selectors := deal.PriceSelectors
	if len(selectors) == 0 {
		selectors = store.PriceSelectors(deal.Store)
	}

	result := o.scraper.Scrape(ctx, deal.OfferURL, selectors)
	if result == nil {
		counts.errors.Add(1)
		o.log.Warn().Str("deal", deal.ID).Str("url", deal.OfferURL).Msg("Scrape yielded no result")
		return
	}

	if result.Blocked {
		o.log.Info().Str("deal", deal.ID).Str("url", deal.OfferURL).Msg("Scrape blocked by challenge page")
		return
	}

	if result.Sold != nil && *result.Sold && !deal.Sold {
		if err := o.repo.MarkDealSold(ctx, deal.ID); err != nil {
			counts.errors.Add(1)
			o.log.Error().Err(err).Str("deal", deal.ID).Msg("Failed to mark deal sold")
			return
		}
		counts.sold.Add(1)
		return
	}

	if !signalsChanged(deal, result) {
		return
	}

	// Merge before persisting: a missing signal never clobbers known state
	price := result.Price
	if price == nil {
		price = deal.Price
	}
	inStock := result.InStock
	if inStock == nil {
		inStock = deal.InStock
	}

	if err := o.repo.UpdateDealSignals(ctx, deal.ID, price, result.Currency, inStock); err != nil {
		counts.errors.Add(1)
		o.log.Error().Err(err).Str("deal", deal.ID).Msg("Failed to persist deal signals")
		return
	}
	counts.updated.Add(1)
}

// signalsChanged compares scraped signals against persisted state
func signalsChanged(deal domain.Deal, result *scraper.Result) bool {
	if result.Price != nil {
		if deal.Price == nil || *deal.Price != *result.Price {
			return true
		}
		if result.Currency != "" && result.Currency != deal.Currency {
			return true
		}
	}
	if result.InStock != nil {
		if deal.InStock == nil || *deal.InStock != *result.InStock {
			return true
		}
	}
	return false
}

// SweepExpiredDeals transitions deals whose expiration timestamp has
// passed. A pure time-based reconciliation: no scraping, idempotent.
func (o *Orchestrator) SweepExpiredDeals(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	candidates, err := o.repo.GetExpiryCandidates(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	count := 0
	for _, deal := range candidates {
		if ctx.Err() != nil {
			break
		}
		if err := o.repo.MarkDealExpired(ctx, deal.ID); err != nil {
			o.log.Error().Err(err).Str("deal", deal.ID).Msg("Failed to expire deal")
			continue
		}
		count++
	}

	o.log.Info().Int("expired", count).Msg("Expiration sweep finished")
	return count, nil
}

// IngestNewListings runs the store's search per query, dedupes against
// tracked offers and persists genuinely new listings. An unsupported
// store type is an informational skip, not an error.
func (o *Orchestrator) IngestNewListings(ctx context.Context, storeType domain.StoreType, maxResultsPerQuery int, queries []Query) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	client, ok := o.stores[storeType]
	if !ok {
		o.log.Info().Str("store", string(storeType)).Msg("Store type not supported, skipping ingestion")
		return 0, nil
	}

	created := 0
	for _, query := range queries {
		if ctx.Err() != nil {
			break
		}

		offers, err := client.Search(ctx, query.Text, maxResultsPerQuery)
		if err != nil {
			o.log.Warn().Err(err).Str("store", string(storeType)).Str("query", query.Text).Msg("Store search failed")
			continue
		}

		for _, offer := range offers {
			exists, err := o.repo.HasListing(ctx, storeType, offer.URL, offer.ItemID)
			if err != nil {
				o.log.Error().Err(err).Str("url", offer.URL).Msg("Failed to check tracked offers")
				continue
			}
			if exists {
				continue
			}

			deal := &domain.Deal{
				ID:        listingID(storeType, offer),
				ProductID: query.ProductID,
				Title:     offer.Title,
				OfferURL:  offer.URL,
				ItemID:    offer.ItemID,
				Price:     offer.Price,
				Currency:  offer.Currency,
				Store:     storeType,
				ExpiresAt: time.Now().Add(defaultListingTTL),
			}
			if err := o.repo.CreateListing(ctx, deal); err != nil {
				o.log.Error().Err(err).Str("deal", deal.ID).Msg("Failed to create listing")
				continue
			}
			created++
		}
	}

	o.log.Info().Str("store", string(storeType)).Int("created", created).Msg("Listing ingestion finished")
	return created, nil
}

// BuildQueries derives one discovery query per active product with a
// non-empty name.
func (o *Orchestrator) BuildQueries(ctx context.Context) ([]Query, error) {
	products, err := o.repo.GetActiveProducts(ctx)
	if err != nil {
		return nil, err
	}

	queries := make([]Query, 0, len(products))
	for _, product := range products {
		if strings.TrimSpace(product.Name) == "" {
			continue
		}
		queries = append(queries, Query{ProductID: product.ID, Text: product.Name})
	}
	return queries, nil
}

// listingID derives a stable deal ID from the store-native item ID, or
// from the offer URL when the store does not expose one.
func listingID(storeType domain.StoreType, offer domain.Offer) string {
	if offer.ItemID != "" {
		return string(storeType) + ":" + offer.ItemID
	}
	sum := sha256.Sum256([]byte(offer.URL))
	return string(storeType) + ":" + hex.EncodeToString(sum[:8])
}
