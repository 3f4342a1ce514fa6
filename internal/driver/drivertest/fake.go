// Package drivertest provides a scripted in-memory page driver for component
// tests.
package drivertest

import (
	"encoding/json"
	"time"

	"github.com/chromedp/cdproto/network"

	"github.com/lcorbella/fwciwatch/internal/driver"
)

var _ driver.Driver = (*Fake)(nil)

// Fake implements driver.Driver with per-method hooks and call recording.
// Unset hooks default to benign no-ops, so a test only scripts the calls it
// cares about.
type Fake struct {
	NavigateFunc    func(url string) error
	ClickFunc       func(selector string, timeout time.Duration) (bool, error)
	WaitVisibleFunc func(selector string, timeout time.Duration) (bool, error)
	TextFunc        func(selector string, timeout time.Duration) (string, bool, error)
	EvaluateFunc    func(expr string, out any) error
	CookiesFunc     func() ([]*network.Cookie, error)

	Navigations     []string
	InjectedCookies []*network.Cookie
	ClearedCookies  bool
	Storage         map[string]string
}

func (f *Fake) Navigate(url string) error {
	f.Navigations = append(f.Navigations, url)
	if f.NavigateFunc != nil {
		return f.NavigateFunc(url)
	}
	return nil
}

func (f *Fake) Click(selector string, timeout time.Duration) (bool, error) {
	if f.ClickFunc != nil {
		return f.ClickFunc(selector, timeout)
	}
	return true, nil
}

func (f *Fake) WaitVisible(selector string, timeout time.Duration) (bool, error) {
	if f.WaitVisibleFunc != nil {
		return f.WaitVisibleFunc(selector, timeout)
	}
	return true, nil
}

func (f *Fake) Text(selector string, timeout time.Duration) (string, bool, error) {
	if f.TextFunc != nil {
		return f.TextFunc(selector, timeout)
	}
	return "", false, nil
}

func (f *Fake) Evaluate(expr string, out any) error {
	if f.EvaluateFunc != nil {
		return f.EvaluateFunc(expr, out)
	}
	return nil
}

func (f *Fake) Cookies() ([]*network.Cookie, error) {
	if f.CookiesFunc != nil {
		return f.CookiesFunc()
	}
	return nil, nil
}

func (f *Fake) SetCookies(cookies []*network.Cookie) error {
	f.InjectedCookies = append(f.InjectedCookies, cookies...)
	return nil
}

func (f *Fake) ClearCookies() error {
	f.ClearedCookies = true
	return nil
}

func (f *Fake) LocalStorage() (map[string]string, error) {
	return f.Storage, nil
}

func (f *Fake) SetLocalStorageItem(key, value string) error {
	if f.Storage == nil {
		f.Storage = make(map[string]string)
	}
	f.Storage[key] = value
	return nil
}

// Unmarshal decodes v into out through JSON, mirroring how chromedp delivers
// Evaluate results. Use it inside EvaluateFunc hooks.
func Unmarshal(v any, out any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
