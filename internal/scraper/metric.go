package scraper

import (
	"fmt"
	"strings"
)

// MetricNotFound is stored when extraction was attempted but the FWCI element
// never appeared. Distinct from a never-collected (empty) table cell.
const MetricNotFound = "Not found"

// ExtractMetric visits one publication detail page and returns its FWCI text.
// A missing metric is data (MetricNotFound), not an error; navigation and
// driver failures propagate because they mean the session is degraded.
func (s *Scraper) ExtractMetric(url string) (string, error) {
	if err := s.drv.Navigate(url); err != nil {
		return "", err
	}

	text, found, err := s.drv.Text(FWCIValue, s.metricWait)
	if err != nil {
		return "", fmt.Errorf("read FWCI: %w", err)
	}
	if !found {
		return MetricNotFound, nil
	}

	value := strings.TrimSpace(text)
	if value == "" {
		return MetricNotFound, nil
	}
	return value, nil
}
