package scraper

// Scopus DOM selectors
// These are isolated here because Elsevier reshuffles class names regularly
// Update these when scraping breaks

const (
	// Author publication listing
	ResultsList = `ul.ViewType-module__nDSGx`
	ResultsItem = `li[data-testid="results-list-item"]`
	ResultLink  = `h4 a`

	// Publication detail page
	FWCIValue = `div[data-testid="fwci-in-scopus"] span[data-testid="unclickable-count"]`

	// Auth state indicators
	SignInButton = `#signin_link_move`
	AuthMarker   = `#user-menu`
)
