// Command sessioncheck restores the stored Scopus session in a visible
// browser and reports whether it still validates. Useful when deciding
// whether a failed scrape needs a fresh --save-session.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/chromedp/chromedp"

	browseropts "github.com/lcorbella/fwciwatch/internal/browser"
	"github.com/lcorbella/fwciwatch/internal/config"
	"github.com/lcorbella/fwciwatch/internal/driver"
	"github.com/lcorbella/fwciwatch/internal/scraper"
	"github.com/lcorbella/fwciwatch/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Could not load config (%v); using defaults", err)
		cfg = config.Default()
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		log.Fatalf("Failed to resolve config dir: %v", err)
	}
	manager := session.NewManager(session.NewStore(configDir), session.Site{
		HomeURL:        cfg.Scopus.BaseURL,
		BaseURL:        cfg.Scopus.BaseURL,
		SignInSelector: scraper.SignInButton,
		MarkerSelector: scraper.AuthMarker,
		CookieDomain:   cfg.Scopus.CookieDomain,
	})

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), browseropts.Options(false)...)
	defer cancelAlloc()
	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	ok, err := manager.Restore(driver.NewChrome(ctx))
	if err != nil {
		log.Fatalf("Restore failed: %v", err)
	}
	if ok {
		log.Println("Stored session is valid.")
	} else {
		log.Println("Stored session did NOT validate; re-run fwciwatch --save-session.")
	}

	fmt.Println("Press Enter to close the browser...")
	fmt.Scanln()
}
