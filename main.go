// Command fwciwatch tracks the Field-Weighted Citation Impact of a Scopus
// author's publications over time.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/chromedp/chromedp"
	goflags "github.com/jessevdk/go-flags"
	"github.com/pkg/browser"

	"github.com/lcorbella/fwciwatch/internal/app"
	browseropts "github.com/lcorbella/fwciwatch/internal/browser"
	"github.com/lcorbella/fwciwatch/internal/config"
	"github.com/lcorbella/fwciwatch/internal/driver"
	"github.com/lcorbella/fwciwatch/internal/scraper"
	"github.com/lcorbella/fwciwatch/internal/session"
	"github.com/lcorbella/fwciwatch/internal/store"
)

type options struct {
	SaveSession bool `long:"save-session" description:"Open a browser, log in to Scopus interactively and save the session"`
	Report      bool `long:"report" description:"Render the HTML report from the stored table and exit"`
	History     bool `long:"history" description:"Print the most recent scrape runs and exit"`
	Headful     bool `long:"headful" description:"Run the scrape browser with a visible window"`
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var opts options
	parser := goflags.NewParser(&opts, goflags.Default)
	parser.Name = "fwciwatch"
	parser.LongDescription = "Track the FWCI of a Scopus author's publications over time."
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	cfg := loadConfig()

	configDir, err := config.ConfigDir()
	if err != nil {
		log.Fatalf("Failed to resolve config dir: %v", err)
	}
	sessions := session.NewManager(session.NewStore(configDir), newSite(cfg))

	journal := openJournal()
	if journal != nil {
		defer journal.Close()
	}

	a := app.New(cfg, sessions, journal)

	switch {
	case opts.History:
		printHistory(journal)
	case opts.Report:
		runReport(a, cfg)
	case opts.SaveSession:
		runCapture(a)
	default:
		runScrape(a, cfg, sessions, opts.Headful)
	}
}

// newSite binds the configured Scopus instance to its auth selectors.
func newSite(cfg *config.Config) session.Site {
	return session.Site{
		HomeURL:        cfg.Scopus.BaseURL,
		BaseURL:        cfg.Scopus.BaseURL,
		SignInSelector: scraper.SignInButton,
		MarkerSelector: scraper.AuthMarker,
		CookieDomain:   cfg.Scopus.CookieDomain,
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		if os.IsNotExist(err) {
			// First run - create default config
			cfg = config.Default()
			if err := cfg.Save(); err != nil {
				log.Printf("Warning: could not save default config: %v", err)
			} else if path, err := config.ConfigPath(); err == nil {
				log.Printf("Created default config at: %s", path)
			}
		} else {
			log.Printf("Warning: could not load config: %v (using defaults)", err)
			cfg = config.Default()
		}
	}
	return cfg
}

func openJournal() *store.Journal {
	cacheDir, err := config.CacheDir()
	if err != nil {
		log.Printf("Warning: run journal disabled: %v", err)
		return nil
	}
	journal, err := store.Open(filepath.Join(cacheDir, "runs.db"))
	if err != nil {
		log.Printf("Warning: run journal disabled: %v", err)
		return nil
	}
	return journal
}

func runCapture(a *app.App) {
	// Capture is always headful: the user has to complete the login.
	ctx, cancel := newBrowser(false)
	defer cancel()

	if err := a.CaptureSession(driver.NewChrome(ctx)); err != nil {
		log.Fatalf("Session capture failed: %v", err)
	}
	log.Println("Session saved. You can now run fwciwatch without --save-session.")
}

func runScrape(a *app.App, cfg *config.Config, sessions *session.Manager, headful bool) {
	if !sessions.ArtifactsExist() {
		fmt.Println("Session files not found.")
		fmt.Println("Run 'fwciwatch --save-session' first to log in and create them.")
		return
	}

	headless := cfg.Scraping.Headless && !headful
	ctx, cancel := newBrowser(headless)
	defer cancel()

	if err := a.Scrape(driver.NewChrome(ctx)); err != nil {
		log.Fatalf("Scrape failed: %v", err)
	}
}

func runReport(a *app.App, cfg *config.Config) {
	path, err := a.Report()
	if err != nil {
		log.Fatalf("Report failed: %v", err)
	}
	log.Printf("Report written to %s", path)

	if cfg.Output.OpenReport {
		if err := browser.OpenFile(path); err != nil {
			log.Printf("Could not open report: %v", err)
		}
	}
}

func printHistory(journal *store.Journal) {
	if journal == nil {
		log.Fatal("Run journal unavailable")
	}
	runs, err := journal.RecentRuns(10)
	if err != nil {
		log.Fatalf("Failed to read run history: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}
	for _, r := range runs {
		fmt.Printf("%s  %-15s candidates=%d extracted=%d not_found=%d skipped=%d",
			r.StartedAt.Format("2006-01-02 15:04"), r.Status,
			r.Candidates, r.Extracted, r.NotFound, r.Skipped)
		if r.Detail != "" {
			fmt.Printf("  (%s)", r.Detail)
		}
		fmt.Println()
	}
}

// newBrowser starts one browser and returns its chromedp context plus a
// cancel that tears the whole browser down.
func newBrowser(headless bool) (context.Context, context.CancelFunc) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), browseropts.Options(headless)...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)

	return ctx, func() {
		ctxCancel()
		allocCancel()
	}
}
