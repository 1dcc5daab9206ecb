package store

import "daehyub/dealwatcher/internal/domain"

// Default price selector profiles per marketplace. A deal-level selector
// override always wins over the profile.
var priceProfiles = map[domain.StoreType][]string{
	domain.StoreEbay: {
		"div[data-testid='x-price-primary'] span.ux-textspans",
		".x-price-primary span",
		"span[itemprop='price']",
		"#prcIsum",
	},
	domain.StoreAmazon: {
		"#corePrice_feature_div span.a-offscreen",
		"span.priceToPay span.a-offscreen",
		"#priceblock_ourprice",
		"span[data-a-color='price'] span.a-offscreen",
	},
}

// PriceSelectors returns the default price selectors for a store.
// Unknown stores get none, which makes the scraper skip extraction.
func PriceSelectors(storeType domain.StoreType) []string {
	return priceProfiles[storeType]
}
