package scraper

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"daehyub/dealwatcher/helpers"
	"daehyub/dealwatcher/logger"
	"daehyub/dealwatcher/services/cache"
	"daehyub/dealwatcher/services/review"

	"github.com/PuerkitoBio/goquery"
)

// JS rendering is slower than a plain fetch, so a configured timeout
// below the floor is raised to the elevated value for the render path.
const (
	renderTimeoutFloor    = 10 * time.Second
	renderTimeoutElevated = 30 * time.Second
)

// Scraper composes fetch, challenge detection, extraction and the
// optional JS-render fallback into a single consolidated scrape.
type Scraper struct {
	fetch         FetchFunc
	renderer      Renderer // nil when rendering is disabled
	cacheSvc      cache.CacheService
	reviewer      review.Publisher // nil unless manual review surfacing is enabled
	scrapeTimeout time.Duration
	renderTimeout time.Duration
	blockTime     time.Duration
	log           *logger.Logger
}

// Options configures a Scraper
type Options struct {
	Fetch         FetchFunc // defaults to helpers.FetchWithRandomHeaders
	Renderer      Renderer
	Cache         cache.CacheService
	Reviewer      review.Publisher
	ScrapeTimeout time.Duration
	RenderTimeout time.Duration
	BlockTime     time.Duration
}

// New creates a new Scraper
func New(opts Options) *Scraper {
	fetch := opts.Fetch
	if fetch == nil {
		fetch = helpers.FetchWithRandomHeaders
	}
	scrapeTimeout := opts.ScrapeTimeout
	if scrapeTimeout <= 0 {
		scrapeTimeout = 10 * time.Second
	}

	return &Scraper{
		fetch:         fetch,
		renderer:      opts.Renderer,
		cacheSvc:      opts.Cache,
		reviewer:      opts.Reviewer,
		scrapeTimeout: scrapeTimeout,
		renderTimeout: opts.RenderTimeout,
		blockTime:     opts.BlockTime,
		log:           logger.ForScraper(),
	}
}

// Scrape fetches the offer URL and extracts price/availability signals
// using the caller-supplied selectors. It fails closed: any unexpected
// error yields a nil result, which callers must read as "try again later",
// never as "deal is gone".
func (s *Scraper) Scrape(ctx context.Context, url string, selectors []string) *Result {
	if len(selectors) == 0 {
		s.log.Warn().Str("url", url).Msg("No price selectors supplied, skipping scrape")
		return nil
	}

	hostKey := helpers.HostKey(url)
	if s.cacheSvc != nil {
		if _, err := s.cacheSvc.Get(hostKey); err == nil {
			s.log.Debug().Str("host", hostKey).Msg("Host is blocked, skipping fetch")
			return nil
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.scrapeTimeout)
	defer cancel()

	body, err := s.fetch(fetchCtx, url)
	if err != nil {
		if helpers.IsRateLimited(err) && s.cacheSvc != nil {
			blockSecs := fmt.Sprintf("%d", int(s.blockTime/time.Second))
			if setErr := s.cacheSvc.Set(hostKey, []byte(blockSecs), s.blockTime); setErr != nil {
				s.log.Debug().Err(setErr).Str("host", hostKey).Msg("Failed to set block cache")
			}
		}
		s.log.Warn().Err(err).Str("url", url).Msg("Fetch failed")
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		s.log.Warn().Err(err).Str("url", url).Msg("HTML parse failed")
		return nil
	}

	result := s.evaluate(doc, selectors)
	if result.Blocked {
		s.surfaceForReview(url)
		return result
	}

	// No price on the raw markup: the content may be client-rendered,
	// so re-run the same extraction against a real browser's output.
	// The fallback never expands the selector set.
	if result.Price == nil && s.renderer != nil {
		if rendered := s.renderFallback(ctx, url, selectors); rendered != nil {
			if rendered.Blocked {
				s.surfaceForReview(url)
				return rendered
			}
			if rendered.Price != nil {
				return rendered
			}
		}
	}

	return result
}

// renderFallback re-fetches the page through the JS renderer and
// re-evaluates it. Every failure returns nil so the initial result stands.
func (s *Scraper) renderFallback(ctx context.Context, url string, selectors []string) *Result {
	timeout := s.renderTimeout
	if timeout < renderTimeoutFloor {
		timeout = renderTimeoutElevated
	}

	markup, err := s.renderer.Render(ctx, url, timeout)
	if err != nil {
		s.log.Debug().Err(err).Str("url", url).Msg("JS render fallback failed")
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		s.log.Debug().Err(err).Str("url", url).Msg("Rendered HTML parse failed")
		return nil
	}

	s.log.Debug().Str("url", url).Int("markup_bytes", len(markup)).Msg("JS render fallback succeeded")
	return s.evaluate(doc, selectors)
}

// evaluate classifies the document and assembles a Result from its signals
func (s *Scraper) evaluate(doc *goquery.Document, selectors []string) *Result {
	pageText := doc.Find("body").Text()

	if IsChallengePage(doc) {
		// Extraction fields stay unset on a blocked scrape
		return &Result{
			Blocked: true,
			Signals: map[string]string{
				"found_price":      "",
				"page_text_length": strconv.Itoa(len(pageText)),
			},
		}
	}

	sig := ExtractSignals(doc, selectors)

	result := &Result{
		Price:    sig.Price,
		Currency: sig.Currency,
		InStock:  sig.InStock,
		Sold:     sig.Sold,
	}

	foundPrice := ""
	if sig.Price != nil {
		foundPrice = strconv.FormatFloat(*sig.Price, 'f', -1, 64)
		if result.Currency == "" {
			// A price with no currency signal defaults to USD
			result.Currency = "USD"
		}
	}

	result.Signals = map[string]string{
		"found_price":      foundPrice,
		"page_text_length": strconv.Itoa(len(pageText)),
	}

	return result
}

// surfaceForReview pushes a challenge-blocked URL to the manual review
// channel. Best-effort only: publish errors are logged and swallowed.
func (s *Scraper) surfaceForReview(url string) {
	if s.reviewer == nil {
		return
	}
	if err := s.reviewer.Publish(helpers.HostKey(url), url); err != nil {
		s.log.Debug().Err(err).Str("url", url).Msg("Failed to publish blocked URL for review")
	}
}
