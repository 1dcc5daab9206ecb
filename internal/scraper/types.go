package scraper

import (
	"context"
	"io"
	"time"
)

// Result is the consolidated outcome of one listing scrape.
// When Blocked is true all extraction fields are unset: a blocked scrape
// must never be read as "no price found on a real page".
type Result struct {
	Price    *float64          `json:"price,omitempty"`
	Currency string            `json:"currency,omitempty"`
	InStock  *bool             `json:"in_stock,omitempty"`
	Sold     *bool             `json:"sold,omitempty"`
	Blocked  bool              `json:"blocked"`
	Signals  map[string]string `json:"signals,omitempty"`
}

// Signals carries the raw extraction output before result assembly
type Signals struct {
	Price    *float64
	Currency string
	InStock  *bool
	Sold     *bool
}

// FetchFunc fetches a URL and returns its body as UTF-8
type FetchFunc func(ctx context.Context, url string) (io.Reader, error)

// Renderer executes a page in a real browser engine and returns the
// rendered markup. Implementations must fail soft: an error return means
// "no rendered content", never a reason to abort the scrape.
type Renderer interface {
	Render(ctx context.Context, url string, timeout time.Duration) (string, error)
}
