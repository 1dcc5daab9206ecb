package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Challenge phrase sets. Each heuristic is sufficient on its own; all of
// them require literal phrase matches so that a real product page is not
// misclassified on structure alone.
var (
	challengeTitlePhrases = []string{
		"just a moment",
		"attention required",
		"access denied",
		"security check",
	}

	challengeLandmarkPhrases = []string{
		"verifying your browser",
		"verify you are human",
	}

	challengeBodyPhrases = []string{
		"checking your browser before accessing",
		"verify you are a human",
		"enable javascript and cookies to continue",
		"complete the security check to access",
		"needs to review the security of your connection",
	}

	challengeMarkupMarkers = []string{
		"cf-browser-verification",
		"cf-challenge",
		"challenge-platform",
		"_incapsula_resource",
		"px-captcha",
		"captcha-delivery.com",
		"datadome",
		"hcaptcha.com",
		"g-recaptcha",
	}
)

// IsChallengePage reports whether a fetched document is an anti-automation
// challenge interstitial rather than a real listing page.
func IsChallengePage(doc *goquery.Document) bool {
	title := strings.ToLower(doc.Find("title").Text())
	for _, phrase := range challengeTitlePhrases {
		if strings.Contains(title, phrase) {
			return true
		}
	}

	landmarks := strings.ToLower(doc.Find("h1, h2, header").Text())
	for _, phrase := range challengeLandmarkPhrases {
		if strings.Contains(landmarks, phrase) {
			return true
		}
	}

	body := strings.ToLower(doc.Find("body").Text())
	for _, phrase := range challengeBodyPhrases {
		if strings.Contains(body, phrase) {
			return true
		}
	}

	// Vendor-specific markers live in scripts and attributes, so the
	// serialized markup is checked as a last resort.
	if markup, err := doc.Html(); err == nil {
		lowered := strings.ToLower(markup)
		for _, marker := range challengeMarkupMarkers {
			if strings.Contains(lowered, marker) {
				return true
			}
		}
	}

	return false
}
