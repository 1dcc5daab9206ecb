package store

import (
	"context"
	"strings"

	"daehyub/dealwatcher/internal/domain"
)

// Client is the per-marketplace search capability. The orchestrator
// depends only on this interface, never on a concrete store type.
type Client interface {
	// Search returns up to limit candidate offers for a query
	Search(ctx context.Context, query string, limit int) ([]domain.Offer, error)

	// StoreType returns the marketplace this client serves
	StoreType() domain.StoreType
}

// TokenProvider supplies marketplace API auth tokens
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// QueryFilter normalizes search text before it hits a store's search API
type QueryFilter interface {
	Filter(query string) string
}

// StaticTokenProvider returns a fixed token, typically from configuration
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider around a fixed token
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

// Token returns the configured token
func (p *StaticTokenProvider) Token(ctx context.Context) (string, error) {
	return p.token, nil
}

// StopWordFilter drops filler words that degrade marketplace search recall
type StopWordFilter struct {
	words map[string]struct{}
}

// NewStopWordFilter creates a filter over the given stop words
func NewStopWordFilter(words []string) *StopWordFilter {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &StopWordFilter{words: set}
}

// Filter removes stop words from the query, preserving word order
func (f *StopWordFilter) Filter(query string) string {
	var kept []string
	for _, word := range strings.Fields(query) {
		if _, drop := f.words[strings.ToLower(word)]; drop {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}
