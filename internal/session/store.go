package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"
)

// ErrMissingArtifacts means one or both session artifact files are absent.
var ErrMissingArtifacts = errors.New("session artifacts not found")

// Store persists a captured session as two files: the driver's native cookie
// sequence and a flat local-storage map. Both are round-tripped opaquely.
type Store struct {
	dir string
}

// storedCookies wraps the cookie sequence with its capture time.
type storedCookies struct {
	Cookies    []*network.Cookie `json:"cookies"`
	CapturedAt time.Time         `json:"captured_at"`
}

// NewStore creates a session store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) cookiesPath() string      { return filepath.Join(s.dir, "cookies.json") }
func (s *Store) localStoragePath() string { return filepath.Join(s.dir, "local_storage.json") }

// Exists reports whether both artifact files are present.
func (s *Store) Exists() bool {
	for _, path := range []string{s.cookiesPath(), s.localStoragePath()} {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}

// Save writes both artifacts. If the second write fails the first file is
// removed, so a partial session is never left on disk.
func (s *Store) Save(cookies []*network.Cookie, localStorage map[string]string) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}

	cookieData, err := json.MarshalIndent(storedCookies{Cookies: cookies, CapturedAt: time.Now()}, "", "  ")
	if err != nil {
		return err
	}
	storageData, err := json.MarshalIndent(localStorage, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.cookiesPath(), cookieData, 0600); err != nil {
		return err
	}
	if err := os.WriteFile(s.localStoragePath(), storageData, 0600); err != nil {
		os.Remove(s.cookiesPath())
		return err
	}
	return nil
}

// Load reads both artifacts, failing with ErrMissingArtifacts if either file
// is absent.
func (s *Store) Load() ([]*network.Cookie, map[string]string, error) {
	cookieData, err := os.ReadFile(s.cookiesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrMissingArtifacts
		}
		return nil, nil, err
	}
	storageData, err := os.ReadFile(s.localStoragePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrMissingArtifacts
		}
		return nil, nil, err
	}

	var stored storedCookies
	if err := json.Unmarshal(cookieData, &stored); err != nil {
		return nil, nil, fmt.Errorf("decode cookies: %w", err)
	}
	localStorage := make(map[string]string)
	if err := json.Unmarshal(storageData, &localStorage); err != nil {
		return nil, nil, fmt.Errorf("decode local storage: %w", err)
	}

	return stored.Cookies, localStorage, nil
}

// Clear removes both artifact files.
func (s *Store) Clear() error {
	var firstErr error
	for _, path := range []string{s.cookiesPath(), s.localStoragePath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
