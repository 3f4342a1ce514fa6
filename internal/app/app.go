// Package app wires the session, scraping, reconciliation and reporting flows
// together around one explicitly threaded page-driver handle.
package app

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lcorbella/fwciwatch/internal/config"
	"github.com/lcorbella/fwciwatch/internal/dataset"
	"github.com/lcorbella/fwciwatch/internal/driver"
	"github.com/lcorbella/fwciwatch/internal/report"
	"github.com/lcorbella/fwciwatch/internal/scraper"
	"github.com/lcorbella/fwciwatch/internal/session"
	"github.com/lcorbella/fwciwatch/internal/store"
)

// App owns the run orchestration. The browser lifecycle stays with the
// caller; each flow receives the driver handle explicitly.
type App struct {
	cfg      *config.Config
	sessions *session.Manager
	journal  *store.Journal // nil disables run recording
}

// New creates an App.
func New(cfg *config.Config, sessions *session.Manager, journal *store.Journal) *App {
	return &App{cfg: cfg, sessions: sessions, journal: journal}
}

// CaptureSession runs the interactive login capture.
func (a *App) CaptureSession(drv driver.Driver) error {
	return a.sessions.Capture(drv)
}

// Scrape restores the session, walks the publication listing, extracts the
// FWCI per publication and merges everything into the persistent table. The
// table file is only touched after every candidate has been processed; a
// failed session restore returns before the table is even loaded.
func (a *App) Scrape(drv driver.Driver) error {
	started := time.Now()

	restored, err := a.sessions.Restore(drv)
	if err != nil {
		a.record(started, nil, "error", err.Error())
		return err
	}
	if !restored {
		a.record(started, nil, "restore-failed", "post-restore probe timed out")
		return session.ErrRestoreFailed
	}
	log.Println("Session restored and validated")

	sc := scraper.New(drv, a.cfg.Scopus.AuthorURL(), a.cfg.Scraping.PageSize)
	candidates, skipped, err := sc.CollectCandidates()
	if err != nil {
		a.record(started, nil, "error", err.Error())
		return fmt.Errorf("collect listing: %w", err)
	}
	log.Printf("Collected %d publication URLs", len(candidates))

	table, err := dataset.Load(a.cfg.Output.TablePath)
	if err != nil {
		a.record(started, nil, "error", err.Error())
		return fmt.Errorf("load table: %w", err)
	}

	column := dataset.MetricColumn(time.Now())
	stats := &store.Run{Candidates: len(candidates), Skipped: skipped}
	for i, cand := range candidates {
		log.Printf("Scraping %d/%d: %s", i+1, len(candidates), cand.Title)

		value, err := sc.ExtractMetric(cand.URL)
		if err != nil {
			a.record(started, stats, "error", err.Error())
			return fmt.Errorf("extract metric for %s: %w", cand.URL, err)
		}
		log.Printf("   FWCI: %s", value)

		if value == scraper.MetricNotFound {
			stats.NotFound++
		} else {
			stats.Extracted++
		}
		table.Upsert(cand.URL, cand.Title, column, value)
	}

	if err := table.Save(a.cfg.Output.TablePath); err != nil {
		a.record(started, stats, "persist-failed", err.Error())
		return fmt.Errorf("persist table to %s: %w", a.cfg.Output.TablePath, err)
	}
	log.Printf("Saved %d rows to %s", table.Len(), a.cfg.Output.TablePath)

	a.record(started, stats, "ok", "")
	return nil
}

// Report renders the HTML report from the stored table and returns its path.
func (a *App) Report() (string, error) {
	table, err := dataset.Load(a.cfg.Output.TablePath)
	if err != nil {
		return "", err
	}
	if table.Len() == 0 {
		return "", errors.New("no collected data yet; run a scrape first")
	}

	renderer, err := report.NewRenderer()
	if err != nil {
		return "", err
	}
	if err := renderer.Render(table, a.cfg.Output.ReportPath); err != nil {
		return "", err
	}
	return a.cfg.Output.ReportPath, nil
}

func (a *App) record(started time.Time, stats *store.Run, status, detail string) {
	if a.journal == nil {
		return
	}

	r := store.Run{}
	if stats != nil {
		r = *stats
	}
	r.StartedAt = started
	r.FinishedAt = time.Now()
	r.Status = status
	r.Detail = detail

	if err := a.journal.RecordRun(&r); err != nil {
		log.Printf("Warning: could not record run: %v", err)
	}
}
