package scraper

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcorbella/fwciwatch/internal/driver/drivertest"
)

// newTestScraper shortens every wait so degraded-path tests stay fast.
func newTestScraper(drv *drivertest.Fake) *Scraper {
	s := New(drv, "https://www.scopus.com/authid/detail.uri?authorId=123", 200)
	s.pageSizeWait = 20 * time.Millisecond
	s.settleDelay = 0
	s.pollStep = 5 * time.Millisecond
	s.listWait = 20 * time.Millisecond
	s.metricWait = 20 * time.Millisecond
	return s
}

func listingEvaluate(pageSizeFound bool, listing any) func(string, any) error {
	return func(expr string, out any) error {
		if strings.Contains(expr, "Display") {
			return drivertest.Unmarshal(pageSizeFound, out)
		}
		return drivertest.Unmarshal(listing, out)
	}
}

func TestCollectCandidates_HappyPath(t *testing.T) {
	drv := &drivertest.Fake{
		EvaluateFunc: listingEvaluate(true, map[string]any{
			"candidates": []map[string]string{
				{"title": "Paper A", "url": "https://x/1"},
				{"title": "Paper B", "url": "https://x/2"},
			},
			"skipped": 1,
		}),
	}

	s := newTestScraper(drv)
	candidates, skipped, err := s.CollectCandidates()
	require.NoError(t, err)

	require.Len(t, candidates, 2)
	assert.Equal(t, "Paper A", candidates[0].Title)
	assert.Equal(t, "https://x/1", candidates[0].URL)
	assert.Equal(t, 1, skipped)

	require.Len(t, drv.Navigations, 1)
	assert.Contains(t, drv.Navigations[0], "authorId=123")
}

func TestCollectCandidates_PageSizeControlAbsent(t *testing.T) {
	drv := &drivertest.Fake{
		EvaluateFunc: listingEvaluate(false, map[string]any{
			"candidates": []map[string]string{
				{"title": "Paper A", "url": "https://x/1"},
			},
			"skipped": 0,
		}),
	}

	// Degraded page size is a warning, not a failure.
	s := newTestScraper(drv)
	candidates, _, err := s.CollectCandidates()
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestCollectCandidates_ListNeverAppears(t *testing.T) {
	drv := &drivertest.Fake{
		EvaluateFunc: listingEvaluate(true, nil),
		WaitVisibleFunc: func(string, time.Duration) (bool, error) {
			return false, nil
		},
	}

	s := newTestScraper(drv)
	candidates, skipped, err := s.CollectCandidates()
	require.NoError(t, err, "an empty result is a valid outcome")
	assert.Empty(t, candidates)
	assert.Zero(t, skipped)
}

func TestCollectCandidates_NavigationErrorPropagates(t *testing.T) {
	boom := errors.New("net::ERR_CONNECTION_RESET")
	drv := &drivertest.Fake{
		NavigateFunc: func(string) error { return boom },
	}

	s := newTestScraper(drv)
	_, _, err := s.CollectCandidates()
	assert.ErrorIs(t, err, boom)
}

func TestExtractMetric_Found(t *testing.T) {
	drv := &drivertest.Fake{
		TextFunc: func(sel string, _ time.Duration) (string, bool, error) {
			assert.Equal(t, FWCIValue, sel)
			return "  3.14 ", true, nil
		},
	}

	s := newTestScraper(drv)
	value, err := s.ExtractMetric("https://x/1")
	require.NoError(t, err)
	assert.Equal(t, "3.14", value)
}

func TestExtractMetric_AbsenceIsData(t *testing.T) {
	drv := &drivertest.Fake{
		TextFunc: func(string, time.Duration) (string, bool, error) {
			return "", false, nil
		},
	}

	s := newTestScraper(drv)
	value, err := s.ExtractMetric("https://x/1")
	require.NoError(t, err)
	assert.Equal(t, MetricNotFound, value)
}

func TestExtractMetric_BlankTextIsNotFound(t *testing.T) {
	drv := &drivertest.Fake{
		TextFunc: func(string, time.Duration) (string, bool, error) {
			return "   ", true, nil
		},
	}

	s := newTestScraper(drv)
	value, err := s.ExtractMetric("https://x/1")
	require.NoError(t, err)
	assert.Equal(t, MetricNotFound, value)
}

func TestExtractMetric_NavigationErrorPropagates(t *testing.T) {
	boom := errors.New("tab crashed")
	drv := &drivertest.Fake{
		NavigateFunc: func(string) error { return boom },
	}

	s := newTestScraper(drv)
	_, err := s.ExtractMetric("https://x/1")
	assert.ErrorIs(t, err, boom)
}
