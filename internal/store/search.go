package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"daehyub/dealwatcher/internal/domain"
	"daehyub/dealwatcher/logger"
	pkgerr "daehyub/dealwatcher/pkg/errors"
)

// SearchClient implements Client against a JSON marketplace search API
// (eBay Browse API shape). Auth and query normalization are delegated to
// the injected collaborators.
type SearchClient struct {
	storeType  domain.StoreType
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	filter     QueryFilter
	log        *logger.Logger
}

// NewSearchClient creates a search client for one marketplace
func NewSearchClient(storeType domain.StoreType, baseURL string, tokens TokenProvider, filter QueryFilter) *SearchClient {
	return &SearchClient{
		storeType:  storeType,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tokens:     tokens,
		filter:     filter,
		log:        logger.ForStore(string(storeType)),
	}
}

// StoreType returns the marketplace this client serves
func (c *SearchClient) StoreType() domain.StoreType {
	return c.storeType
}

// searchResponse mirrors the relevant slice of the search API payload
type searchResponse struct {
	ItemSummaries []struct {
		ItemID     string `json:"itemId"`
		Title      string `json:"title"`
		ItemWebURL string `json:"itemWebUrl"`
		Price      struct {
			Value    string `json:"value"`
			Currency string `json:"currency"`
		} `json:"price"`
	} `json:"itemSummaries"`
}

// Search returns up to limit candidate offers for a query
func (c *SearchClient) Search(ctx context.Context, query string, limit int) ([]domain.Offer, error) {
	if c.filter != nil {
		query = c.filter.Filter(query)
	}
	if query == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s?q=%s&limit=%d", c.baseURL, url.QueryEscape(query), limit)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, pkgerr.NewStore(string(c.storeType), "failed to create search request", err)
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, pkgerr.NewStore(string(c.storeType), "failed to obtain auth token", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerr.NewStore(string(c.storeType), "search request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pkgerr.NewStore(string(c.storeType),
			fmt.Sprintf("search returned status %d", resp.StatusCode), nil)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerr.NewStore(string(c.storeType), "failed to decode search response", err)
	}

	offers := make([]domain.Offer, 0, len(payload.ItemSummaries))
	for _, item := range payload.ItemSummaries {
		if item.ItemWebURL == "" && item.ItemID == "" {
			continue
		}
		offer := domain.Offer{
			Title:    item.Title,
			URL:      item.ItemWebURL,
			ItemID:   item.ItemID,
			Currency: item.Price.Currency,
			Store:    c.storeType,
		}
		if value, err := strconv.ParseFloat(item.Price.Value, 64); err == nil {
			offer.Price = &value
		}
		offers = append(offers, offer)
		if len(offers) >= limit {
			break
		}
	}

	c.log.Debug().Str("query", query).Int("offers", len(offers)).Msg("Search completed")
	return offers, nil
}
