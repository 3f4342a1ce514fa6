// Package scraper extracts the publication listing and per-publication FWCI
// values from Scopus through the page-driver capability.
package scraper

import (
	"fmt"
	"log"
	"time"

	"github.com/lcorbella/fwciwatch/internal/driver"
	"github.com/lcorbella/fwciwatch/internal/types"
)

// Scraper runs the listing and metric phases over one shared browser tab,
// strictly one navigation at a time.
type Scraper struct {
	drv       driver.Driver
	authorURL string
	pageSize  int

	// Wait bounds are fixed per call site; fields exist so tests can shorten
	// them.
	pageSizeWait time.Duration
	settleDelay  time.Duration
	pollStep     time.Duration
	listWait     time.Duration
	metricWait   time.Duration
}

// New creates a Scraper bound to one driver handle.
func New(drv driver.Driver, authorURL string, pageSize int) *Scraper {
	return &Scraper{
		drv:          drv,
		authorURL:    authorURL,
		pageSize:     pageSize,
		pageSizeWait: 20 * time.Second,
		settleDelay:  5 * time.Second,
		pollStep:     500 * time.Millisecond,
		listWait:     20 * time.Second,
		metricWait:   10 * time.Second,
	}
}

// listingResult is the raw data returned by the listing DOM evaluation.
type listingResult struct {
	Candidates []types.Candidate `json:"candidates"`
	Skipped    int               `json:"skipped"`
}

// CollectCandidates navigates to the author listing and extracts a (title,
// URL) pair per publication, plus the count of items skipped for lacking a
// detail link. Degraded page features reduce the result, they never fail the
// run; only driver-level errors propagate.
func (s *Scraper) CollectCandidates() ([]types.Candidate, int, error) {
	if err := s.drv.Navigate(s.authorURL); err != nil {
		return nil, 0, err
	}

	if err := s.setPageSize(); err != nil {
		return nil, 0, err
	}

	visible, err := s.drv.WaitVisible(ResultsList, s.listWait)
	if err != nil {
		return nil, 0, fmt.Errorf("wait for results list: %w", err)
	}
	if !visible {
		log.Println("Results list never appeared; nothing collected")
		return nil, 0, nil
	}

	var res listingResult
	if err := s.drv.Evaluate(listingJS, &res); err != nil {
		return nil, 0, fmt.Errorf("extract listing: %w", err)
	}
	if res.Skipped > 0 {
		log.Printf("Skipped %d listing items without a detail link", res.Skipped)
	}
	return res.Candidates, res.Skipped, nil
}

// setPageSize bumps the "Display" select to the configured page size so a
// single page holds the whole listing. A missing control degrades to the
// default page size with a warning.
func (s *Scraper) setPageSize() error {
	expr := fmt.Sprintf(pageSizeJS, s.pageSize)
	deadline := time.Now().Add(s.pageSizeWait)
	for {
		var set bool
		if err := s.drv.Evaluate(expr, &set); err != nil {
			return fmt.Errorf("set page size: %w", err)
		}
		if set {
			// Give the list time to reload at the new page size.
			time.Sleep(s.settleDelay)
			return nil
		}
		if time.Now().After(deadline) {
			log.Println("Page size control not found; proceeding with the default page size")
			return nil
		}
		time.Sleep(s.pollStep)
	}
}

const pageSizeJS = `(() => {
	const spans = document.querySelectorAll('span');
	for (const span of spans) {
		if (span.textContent.trim() !== 'Display') continue;
		const sel = span.nextElementSibling;
		if (!sel || sel.tagName !== 'SELECT') continue;
		sel.scrollIntoView({block: 'center'});
		sel.value = '%d';
		sel.dispatchEvent(new Event('change', {bubbles: true}));
		return true;
	}
	return false;
})()`

const listingJS = `(() => {
	const out = {candidates: [], skipped: 0};
	const items = document.querySelectorAll("` + ResultsList + ` ` + ResultsItem + `");
	items.forEach(item => {
		const link = item.querySelector("` + ResultLink + `");
		if (!link || !link.href) {
			out.skipped++;
			return;
		}
		out.candidates.push({title: (link.textContent || '').trim(), url: link.href});
	});
	return out;
})()`
