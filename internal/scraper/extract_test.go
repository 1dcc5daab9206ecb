package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestExtractSignals_BasicPrice(t *testing.T) {
	doc := docFromHTML(t, `
		<html><body>
			<div class="product-price">
				<span class="x-price-primary">US $949.00</span>
			</div>
		</body></html>
	`)

	sig := ExtractSignals(doc, []string{".x-price-primary"})

	require.NotNil(t, sig.Price)
	assert.Equal(t, 949.00, *sig.Price)
	assert.Equal(t, "USD", sig.Currency)
}

func TestExtractSignals_MidpointDuplicate(t *testing.T) {
	// Screen-reader markup often repeats the price verbatim
	doc := docFromHTML(t, `
		<html><body>
			<div class="price-box">
				<span class="x-price-primary">US $949.00US $949.00</span>
			</div>
		</body></html>
	`)

	sig := ExtractSignals(doc, []string{".x-price-primary"})

	require.NotNil(t, sig.Price)
	assert.Equal(t, 949.00, *sig.Price)
}

func TestExtractSignals_AriaLabelPreferred(t *testing.T) {
	doc := docFromHTML(t, `
		<html><body>
			<div class="price-box">
				<span class="amount" aria-label="US $120.50">irrelevant inner text</span>
			</div>
		</body></html>
	`)

	sig := ExtractSignals(doc, []string{".amount"})

	require.NotNil(t, sig.Price)
	assert.Equal(t, 120.50, *sig.Price)
	assert.Equal(t, "USD", sig.Currency)
}

func TestExtractSignals_StruckPriceLoses(t *testing.T) {
	doc := docFromHTML(t, `
		<html><body>
			<div class="product-summary">
				<span class="amount strike">$199.99</span>
				<span class="amount">$149.99</span>
			</div>
		</body></html>
	`)

	sig := ExtractSignals(doc, []string{".amount"})

	require.NotNil(t, sig.Price)
	assert.Equal(t, 149.99, *sig.Price)
}

func TestExtractSignals_StruckOnlyAsLastResort(t *testing.T) {
	doc := docFromHTML(t, `
		<html><body>
			<div class="product-summary">
				<span class="amount" style="text-decoration: line-through">$199.99</span>
			</div>
		</body></html>
	`)

	sig := ExtractSignals(doc, []string{".amount"})

	require.NotNil(t, sig.Price)
	assert.Equal(t, 199.99, *sig.Price)
}

func TestExtractSignals_PromoCalloutDoesNotShadow(t *testing.T) {
	// "Save $20" parses to a lower amount but must not beat the real price
	doc := docFromHTML(t, `
		<html><body>
			<div class="product-summary">
				<span class="amount">Save $20</span>
				<span class="amount">$149.99</span>
			</div>
		</body></html>
	`)

	sig := ExtractSignals(doc, []string{".amount"})

	require.NotNil(t, sig.Price)
	assert.Equal(t, 149.99, *sig.Price)
}

func TestExtractSignals_RegionLocking(t *testing.T) {
	// The cheaper price in the related-items rail is outside the locked
	// region and must be discarded
	doc := docFromHTML(t, `
		<html><body>
			<div class="product-price">
				<span class="amount">$50.00</span>
			</div>
			<div class="related-items">
				<span class="amount">$10.00</span>
			</div>
		</body></html>
	`)

	sig := ExtractSignals(doc, []string{".amount"})

	require.NotNil(t, sig.Price)
	assert.Equal(t, 50.00, *sig.Price)
}

func TestExtractSignals_EmptySelectorsDoNothing(t *testing.T) {
	doc := docFromHTML(t, `
		<html><body><div class="price-box"><span class="amount">$50.00</span></div></body></html>
	`)

	sig := ExtractSignals(doc, nil)

	assert.Nil(t, sig.Price)
	assert.Empty(t, sig.Currency)
}

func TestExtractSignals_EarlyStopSkipsLaterSelectors(t *testing.T) {
	// Six candidates inside a locked region satisfy the accumulator, so
	// the second selector never runs and its cheaper price is not seen
	doc := docFromHTML(t, `
		<html><body>
			<div class="product-price">
				<span class="a">$60.00</span>
				<span class="a">$61.00</span>
				<span class="a">$62.00</span>
				<span class="a">$63.00</span>
				<span class="a">$64.00</span>
				<span class="a">$65.00</span>
				<span class="b">$1.00</span>
			</div>
		</body></html>
	`)

	sig := ExtractSignals(doc, []string{".a", ".b"})

	require.NotNil(t, sig.Price)
	assert.Equal(t, 60.00, *sig.Price)
}

func TestExtractSignals_StockAndSold(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantSet  bool
		wantVal  bool
		wantSold bool
	}{
		{"in stock", "Hurry, in stock now", true, true, false},
		{"out of stock", "Currently out of stock", true, false, false},
		{"both phrases, out wins", "In stock... actually out of stock", true, false, false},
		{"no phrases", "A lovely product page", false, false, false},
		{"sold listing", "This item has been sold", false, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := docFromHTML(t, `<html><body><p>`+tc.body+`</p><span class="amount">$10</span></body></html>`)
			sig := ExtractSignals(doc, []string{".amount"})

			if tc.wantSet {
				require.NotNil(t, sig.InStock)
				assert.Equal(t, tc.wantVal, *sig.InStock)
			} else {
				assert.Nil(t, sig.InStock)
			}

			if tc.wantSold {
				require.NotNil(t, sig.Sold)
				assert.True(t, *sig.Sold)
			} else {
				assert.Nil(t, sig.Sold)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"US $1,299.99", 1299.99, true},
		{"$949.00", 949.00, true},
		{"949", 949, true},
		{"£12.5", 12.5, true},
		{"no digits here", 0, false},
		{"", 0, false},
	}

	for _, tc := range tests {
		got, ok := parseAmount(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}

func TestDetectCurrency(t *testing.T) {
	assert.Equal(t, "USD", detectCurrency("US $949.00"))
	assert.Equal(t, "USD", detectCurrency("$12"))
	assert.Equal(t, "EUR", detectCurrency("EUR 15,00"))
	assert.Equal(t, "EUR", detectCurrency("€15"))
	assert.Equal(t, "GBP", detectCurrency("£9.99"))
	assert.Equal(t, "", detectCurrency("949.00"))

	// USD markers win when multiple symbols appear
	assert.Equal(t, "USD", detectCurrency("$10 (about €9)"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "US $949.00", cleanText("US  $949.00"))
	assert.Equal(t, "US $949.00", cleanText("US $949.00US $949.00"))
	// Odd-length strings are never split
	assert.Equal(t, "aba", cleanText("aba"))
	// Non-matching halves stay intact
	assert.Equal(t, "$10 $20", cleanText("$10 $20"))
}
