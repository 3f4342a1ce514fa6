package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcorbella/fwciwatch/internal/config"
	"github.com/lcorbella/fwciwatch/internal/dataset"
	"github.com/lcorbella/fwciwatch/internal/driver/drivertest"
	"github.com/lcorbella/fwciwatch/internal/session"
	"github.com/lcorbella/fwciwatch/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Scopus.AuthorID = "123"
	cfg.Output.TablePath = filepath.Join(dir, "publications.csv")
	cfg.Output.ReportPath = filepath.Join(dir, "report.html")
	return cfg
}

func testSessions(t *testing.T, cfg *config.Config, withArtifacts bool) *session.Manager {
	t.Helper()
	sessionStore := session.NewStore(t.TempDir())
	if withArtifacts {
		require.NoError(t, sessionStore.Save([]*network.Cookie{
			{Name: "SCSessionID", Value: "abc", Domain: ".scopus.com"},
		}, map[string]string{}))
	}
	return session.NewManager(sessionStore, session.Site{
		HomeURL:        cfg.Scopus.BaseURL,
		BaseURL:        cfg.Scopus.BaseURL,
		SignInSelector: "#signin_link_move",
		MarkerSelector: "#user-menu",
		CookieDomain:   cfg.Scopus.CookieDomain,
	})
}

func testJournal(t *testing.T) *store.Journal {
	t.Helper()
	j, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestScrape_RestoreFailureLeavesTableUntouched(t *testing.T) {
	cfg := testConfig(t)
	journal := testJournal(t)
	a := New(cfg, testSessions(t, cfg, true), journal)

	drv := &drivertest.Fake{
		WaitVisibleFunc: func(string, time.Duration) (bool, error) {
			// Session artifacts inject fine but the logged-in marker
			// never shows up.
			return false, nil
		},
	}

	err := a.Scrape(drv)
	assert.ErrorIs(t, err, session.ErrRestoreFailed)

	_, statErr := os.Stat(cfg.Output.TablePath)
	assert.True(t, os.IsNotExist(statErr), "table must not be created on restore failure")

	runs, err := journal.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "restore-failed", runs[0].Status)
}

func TestScrape_MissingArtifacts(t *testing.T) {
	cfg := testConfig(t)
	a := New(cfg, testSessions(t, cfg, false), nil)

	drv := &drivertest.Fake{}
	err := a.Scrape(drv)
	assert.ErrorIs(t, err, session.ErrMissingArtifacts)
	assert.Empty(t, drv.Navigations)

	_, statErr := os.Stat(cfg.Output.TablePath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestScrape_NilJournalIsAllowed(t *testing.T) {
	cfg := testConfig(t)
	a := New(cfg, testSessions(t, cfg, false), nil)

	// The missing-artifacts path exercises record() with no journal.
	err := a.Scrape(&drivertest.Fake{})
	assert.ErrorIs(t, err, session.ErrMissingArtifacts)
}

func TestReport_NoDataYet(t *testing.T) {
	cfg := testConfig(t)
	a := New(cfg, testSessions(t, cfg, false), nil)

	_, err := a.Report()
	assert.Error(t, err)

	_, statErr := os.Stat(cfg.Output.ReportPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestReport_RendersStoredTable(t *testing.T) {
	cfg := testConfig(t)
	a := New(cfg, testSessions(t, cfg, false), nil)

	table := dataset.New()
	table.Upsert("https://x/1", "Paper A", "FWCI (01/06/24)", "3.14")
	require.NoError(t, table.Save(cfg.Output.TablePath))

	path, err := a.Report()
	require.NoError(t, err)
	assert.Equal(t, cfg.Output.ReportPath, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Paper A")
	assert.Contains(t, string(data), "3.14")
}
