package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration
type Config struct {
	Version  int            `toml:"version"`
	Scopus   ScopusConfig   `toml:"scopus"`
	Scraping ScrapingConfig `toml:"scraping"`
	Output   OutputConfig   `toml:"output"`
}

type ScopusConfig struct {
	AuthorID     string `toml:"author_id"`
	BaseURL      string `toml:"base_url"`
	CookieDomain string `toml:"cookie_domain"`
}

type ScrapingConfig struct {
	Headless bool `toml:"headless"`
	PageSize int  `toml:"page_size"`
}

type OutputConfig struct {
	TablePath  string `toml:"table_path"`
	ReportPath string `toml:"report_path"`
	OpenReport bool   `toml:"open_report"`
}

// AuthorURL returns the publication listing URL for the configured author.
func (c ScopusConfig) AuthorURL() string {
	return fmt.Sprintf("%s/authid/detail.uri?authorId=%s", c.BaseURL, c.AuthorID)
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Version: 1,
		Scopus: ScopusConfig{
			AuthorID:     "57201649539",
			BaseURL:      "https://www.scopus.com",
			CookieDomain: "scopus.com",
		},
		Scraping: ScrapingConfig{
			Headless: true,
			PageSize: 200,
		},
		Output: OutputConfig{
			TablePath:  "scopus_publications.csv",
			ReportPath: "fwci_report.html",
			OpenReport: true,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "fwciwatch"), nil
}

// CacheDir returns the platform-appropriate cache directory
func CacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "fwciwatch"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads config from disk
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}
