// Package session handles capturing a Scopus login interactively and
// replaying it silently on later runs.
package session

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"

	"github.com/lcorbella/fwciwatch/internal/driver"
)

var (
	// ErrLoginTimeout means interactive capture never observed the
	// authenticated marker. Nothing was written.
	ErrLoginTimeout = errors.New("login not confirmed before timeout")

	// ErrRestoreFailed means the artifacts loaded but the post-restore probe
	// timed out; the stored session is presumed stale.
	ErrRestoreFailed = errors.New("session restore failed; run with --save-session to capture a fresh session")
)

// Session validity is judged empirically by probing for the authenticated UI,
// never by inspecting token expiry. Each wait bound is fixed by its call site.
const (
	signInWait  = 15 * time.Second
	captureWait = 5 * time.Minute
	restoreWait = 15 * time.Second
)

// Site describes the target site a session belongs to.
type Site struct {
	HomeURL        string // entry point, also the restore validation page
	BaseURL        string // navigated before cookie injection
	SignInSelector string // clicked (best effort) to reach the login form
	MarkerSelector string // visible only when authenticated
	CookieDomain   string // only cookies whose domain contains this are replayed
}

// Manager orchestrates interactive capture and silent restore of a session.
type Manager struct {
	store *Store
	site  Site
}

// NewManager creates a session manager over the given store.
func NewManager(store *Store, site Site) *Manager {
	return &Manager{store: store, site: site}
}

// ArtifactsExist reports whether a capture has been persisted.
func (m *Manager) ArtifactsExist() bool {
	return m.store.Exists()
}

// Capture guides the user through an interactive login and persists the
// resulting cookies and local storage.
func (m *Manager) Capture(drv driver.Driver) error {
	if err := drv.Navigate(m.site.HomeURL); err != nil {
		return err
	}

	clicked, err := drv.Click(m.site.SignInSelector, signInWait)
	if err != nil {
		return fmt.Errorf("click sign-in: %w", err)
	}
	if !clicked {
		log.Println("No sign-in control found; assuming we are already on the login form")
	}

	log.Printf("Complete the login in the browser window; waiting up to %s for the %q marker...",
		captureWait, m.site.MarkerSelector)
	visible, err := drv.WaitVisible(m.site.MarkerSelector, captureWait)
	if err != nil {
		return fmt.Errorf("wait for login marker: %w", err)
	}
	if !visible {
		return ErrLoginTimeout
	}

	cookies, err := drv.Cookies()
	if err != nil {
		return fmt.Errorf("read cookies: %w", err)
	}
	localStorage, err := drv.LocalStorage()
	if err != nil {
		return fmt.Errorf("read local storage: %w", err)
	}

	if err := m.store.Save(cookies, localStorage); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Restore injects the stored session into the browser and validates it by
// probing for the authenticated marker. A false return means the probe timed
// out; the caller decides whether that is fatal.
func (m *Manager) Restore(drv driver.Driver) (bool, error) {
	cookies, localStorage, err := m.store.Load()
	if err != nil {
		return false, err
	}

	if err := drv.Navigate(m.site.BaseURL); err != nil {
		return false, err
	}
	if err := drv.ClearCookies(); err != nil {
		return false, fmt.Errorf("clear cookies: %w", err)
	}

	// Local storage must be in place before navigating with cookies active.
	for key, value := range localStorage {
		if err := drv.SetLocalStorageItem(key, value); err != nil {
			return false, fmt.Errorf("inject local storage key %q: %w", key, err)
		}
	}

	matched := make([]*network.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		if strings.Contains(ck.Domain, m.site.CookieDomain) {
			matched = append(matched, ck)
		}
	}
	if err := drv.SetCookies(matched); err != nil {
		return false, fmt.Errorf("inject cookies: %w", err)
	}
	log.Printf("Injected %d/%d stored cookies and %d local storage keys",
		len(matched), len(cookies), len(localStorage))

	if err := drv.Navigate(m.site.HomeURL); err != nil {
		return false, err
	}
	return drv.WaitVisible(m.site.MarkerSelector, restoreWait)
}
