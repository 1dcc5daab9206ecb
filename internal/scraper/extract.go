package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// moneyPattern matches the first monetary number in a cleaned string:
// optional thousands commas and up to two decimal places.
var moneyPattern = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?`)

// regionMarkers identify a plausible price container in ancestor class/id text
var regionMarkers = []string{"product", "price", "buy", "main", "summary", "detail"}

// struckClassMarkers suggest a superseded list price
var struckClassMarkers = []string{"strike", "line-through", "was", "old", "list"}

// promoMarkers flag discount callouts that must not shadow a normal price
var promoMarkers = []string{"save", "discount", "off"}

// maxCandidates caps collection on noisy pages once a region is locked
const maxCandidates = 6

type candidate struct {
	amount   float64
	currency string
	struck   bool
	promo    bool
}

// extraction accumulates candidates and the locked price region for a
// single scrape. It must not outlive the scrape and must never be shared
// across concurrent scrapes.
type extraction struct {
	region     *html.Node
	candidates []candidate
}

// satisfied reports whether remaining selector passes can be skipped
func (e *extraction) satisfied() bool {
	return e.region != nil && len(e.candidates) >= maxCandidates
}

// collect evaluates one matched element as a price candidate
func (e *extraction) collect(s *goquery.Selection) {
	if s.Length() == 0 {
		return
	}
	node := s.Get(0)

	// Once a region is locked, candidates outside it are unrelated
	// prices (related items, upsells) and are discarded.
	if e.region != nil && !containsNode(e.region, node) {
		return
	}

	raw := rawText(s)
	if raw == "" {
		return
	}

	amount, ok := parseAmount(cleanText(raw))
	if !ok {
		return
	}

	e.candidates = append(e.candidates, candidate{
		amount:   amount,
		currency: detectCurrency(raw),
		struck:   isStruck(s),
		promo:    isPromotional(raw),
	})

	// The element yielding the first valid candidate defines the region
	if e.region == nil {
		e.region = lockRegion(s)
	}
}

// ExtractSignals runs the selector-driven price extraction plus the
// page-level stock/sold heuristics over a parsed document. The selector
// list is mandatory: with no selectors no candidate evaluation happens at
// all, since generic extraction on unknown page structures produces
// garbage matches.
func ExtractSignals(doc *goquery.Document, selectors []string) Signals {
	var sig Signals
	if len(selectors) == 0 {
		return sig
	}

	acc := &extraction{}
	for _, selector := range selectors {
		if acc.satisfied() {
			break
		}
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			acc.collect(s)
		})
	}

	if chosen, ok := choose(acc.candidates); ok {
		amount := chosen.amount
		sig.Price = &amount
		sig.Currency = chosen.currency
	}

	pageText := strings.ToLower(doc.Find("body").Text())
	sig.InStock = stockSignal(pageText)
	if strings.Contains(pageText, "sold") {
		sold := true
		sig.Sold = &sold
	}

	return sig
}

// rawText returns the preferred raw text for an element:
// aria-label, then content attribute, then text content.
func rawText(s *goquery.Selection) string {
	if label, ok := s.Attr("aria-label"); ok && strings.TrimSpace(label) != "" {
		return strings.TrimSpace(label)
	}
	if content, ok := s.Attr("content"); ok && strings.TrimSpace(content) != "" {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(s.Text())
}

// cleanText collapses whitespace and truncates verbatim midpoint
// duplicates, e.g. "US $949.00US $949.00" from screen-reader markup.
func cleanText(raw string) string {
	cleaned := strings.Join(strings.Fields(raw), " ")
	if n := len(cleaned); n > 0 && n%2 == 0 && strings.EqualFold(cleaned[:n/2], cleaned[n/2:]) {
		cleaned = cleaned[:n/2]
	}
	return cleaned
}

// parseAmount extracts the first monetary number from cleaned text
func parseAmount(text string) (float64, bool) {
	match := moneyPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// detectCurrency resolves a currency code from raw candidate text by
// keyword/symbol precedence. An empty string means undetermined.
func detectCurrency(raw string) string {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, "USD") || strings.Contains(upper, "US $") || strings.Contains(raw, "$"):
		return "USD"
	case strings.Contains(upper, "EUR") || strings.Contains(raw, "€"):
		return "EUR"
	case strings.Contains(upper, "GBP") || strings.Contains(raw, "£"):
		return "GBP"
	default:
		return ""
	}
}

// isPromotional flags discount callouts like "save $20" or "15% off"
func isPromotional(raw string) bool {
	lowered := strings.ToLower(raw)
	for _, marker := range promoMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// isStruck reports whether the element or its immediate parent renders
// the price struck through, via inline style or a superseded-price class.
func isStruck(s *goquery.Selection) bool {
	if struckStyle(s) || struckClass(s) {
		return true
	}
	parent := s.Parent()
	return struckStyle(parent) || struckClass(parent)
}

func struckStyle(s *goquery.Selection) bool {
	style, _ := s.Attr("style")
	return strings.Contains(strings.ToLower(style), "line-through")
}

func struckClass(s *goquery.Selection) bool {
	class, _ := s.Attr("class")
	lowered := strings.ToLower(class)
	for _, marker := range struckClassMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// lockRegion walks upward from the candidate element and returns the
// narrowest ancestor whose class/id text contains a region marker,
// stopping at (and falling back to) the document body.
func lockRegion(s *goquery.Selection) *html.Node {
	for p := s.Parent(); p.Length() > 0; p = p.Parent() {
		node := p.Get(0)
		if node.Type == html.ElementNode && node.Data == "body" {
			return node
		}
		class, _ := p.Attr("class")
		id, _ := p.Attr("id")
		label := strings.ToLower(class + " " + id)
		for _, marker := range regionMarkers {
			if strings.Contains(label, marker) {
				return node
			}
		}
	}
	return nil
}

// containsNode reports whether n is root or a descendant of root
func containsNode(root, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

// choose applies the selection policy over the final candidate set:
// prefer clean candidates (neither struck nor promotional), then
// non-struck ones, then anything with a parseable amount. The lowest
// amount wins within each tier, which handles "was $X now $Y" pages.
func choose(candidates []candidate) (candidate, bool) {
	if c, ok := lowest(candidates, func(c candidate) bool { return !c.struck && !c.promo }); ok {
		return c, true
	}
	if c, ok := lowest(candidates, func(c candidate) bool { return !c.struck }); ok {
		return c, true
	}
	return lowest(candidates, func(candidate) bool { return true })
}

func lowest(candidates []candidate, keep func(candidate) bool) (candidate, bool) {
	var best candidate
	found := false
	for _, c := range candidates {
		if !keep(c) {
			continue
		}
		if !found || c.amount < best.amount {
			best = c
			found = true
		}
	}
	return best, found
}

// stockSignal derives the tri-state in-stock flag from page text.
// The out-of-stock check runs independently and wins when both phrase
// sets are present.
func stockSignal(pageText string) *bool {
	var inStock *bool
	if strings.Contains(pageText, "in stock") || strings.Contains(pageText, "available") {
		v := true
		inStock = &v
	}
	if strings.Contains(pageText, "out of stock") || strings.Contains(pageText, "unavailable") {
		v := false
		inStock = &v
	}
	return inStock
}
