package domain

import "time"

// StoreType identifies a supported marketplace
type StoreType string

const (
	StoreEbay   StoreType = "ebay"
	StoreAmazon StoreType = "amazon"
)

// ParseStoreType maps a config key to a StoreType
func ParseStoreType(key string) (StoreType, bool) {
	switch StoreType(key) {
	case StoreEbay:
		return StoreEbay, true
	case StoreAmazon:
		return StoreAmazon, true
	default:
		return "", false
	}
}

// Deal is a product-to-offer binding under monitoring.
// A deal with an empty OfferURL cannot be refreshed.
type Deal struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Title     string    `json:"title"`
	OfferURL  string    `json:"offer_url,omitempty"`
	ItemID    string    `json:"item_id,omitempty"`
	Price     *float64  `json:"price,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	InStock   *bool     `json:"in_stock,omitempty"`
	Sold      bool      `json:"sold"`
	Expired   bool      `json:"expired"`
	ExpiresAt time.Time `json:"expires_at"`
	Store     StoreType `json:"store"`
	UpdatedAt time.Time `json:"updated_at"`

	// PriceSelectors overrides the store's default price selector profile
	PriceSelectors []string `json:"price_selectors,omitempty"`
}

// IsExpiredAt reports whether the deal's expiration timestamp has passed
func (d *Deal) IsExpiredAt(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && d.ExpiresAt.Before(now)
}

// Product is a catalog entry that drives new-listing discovery
type Product struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Offer is a candidate listing returned by a store search
type Offer struct {
	Title    string    `json:"title"`
	URL      string    `json:"url"`
	ItemID   string    `json:"item_id,omitempty"`
	Price    *float64  `json:"price,omitempty"`
	Currency string    `json:"currency,omitempty"`
	Store    StoreType `json:"store"`
}
