package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeRenderer implements Renderer with a headless Chrome instance.
// Rendering is strictly best-effort: every failure mode (timeout,
// navigation error, empty document) comes back as an error the scraper
// treats as "no rendered content".
type ChromeRenderer struct{}

// NewChromeRenderer creates a new headless Chrome renderer
func NewChromeRenderer() *ChromeRenderer {
	return &ChromeRenderer{}
}

// Render navigates to the URL in headless Chrome, waits for the page to
// settle, and returns the rendered markup.
func (r *ChromeRenderer) Render(ctx context.Context, url string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var markup string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second), // let client-side rendering settle
		chromedp.OuterHTML("html", &markup),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	if markup == "" {
		return "", fmt.Errorf("render %s: empty document", url)
	}

	return markup, nil
}
