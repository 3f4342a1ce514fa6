// Package driver defines the page-driver capability every scraping component
// works against, plus its chromedp implementation. Components depend on the
// Driver interface only, so tests can substitute a scripted fake and the
// automation library stays an implementation detail of this package.
package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// Driver is the capability surface over one live browser tab.
//
// Bounded waits report soft absence as (false, nil); a non-nil error always
// means the browser session itself is degraded.
type Driver interface {
	Navigate(url string) error
	Click(selector string, timeout time.Duration) (bool, error)
	WaitVisible(selector string, timeout time.Duration) (bool, error)
	Text(selector string, timeout time.Duration) (string, bool, error)
	Evaluate(expr string, out any) error
	Cookies() ([]*network.Cookie, error)
	SetCookies(cookies []*network.Cookie) error
	ClearCookies() error
	LocalStorage() (map[string]string, error)
	SetLocalStorageItem(key, value string) error
}

// Chrome drives a single chromedp browser tab.
type Chrome struct {
	ctx context.Context
}

// NewChrome wraps an existing chromedp browser context. The caller owns the
// browser lifecycle; one Chrome handle is threaded through a whole run.
func NewChrome(ctx context.Context) *Chrome {
	return &Chrome{ctx: ctx}
}

func (c *Chrome) Navigate(url string) error {
	if err := chromedp.Run(c.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// bounded runs actions under a deadline, mapping the deadline to soft absence.
func (c *Chrome) bounded(timeout time.Duration, actions ...chromedp.Action) (bool, error) {
	tctx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()

	err := chromedp.Run(tctx, actions...)
	if err == nil {
		return true, nil
	}
	// A dead browser context is a hard failure no matter what chromedp
	// reports for the individual action.
	if c.ctx.Err() != nil {
		return false, c.ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return false, nil
	}
	return false, err
}

func (c *Chrome) Click(selector string, timeout time.Duration) (bool, error) {
	return c.bounded(timeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (c *Chrome) WaitVisible(selector string, timeout time.Duration) (bool, error) {
	return c.bounded(timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (c *Chrome) Text(selector string, timeout time.Duration) (string, bool, error) {
	var text string
	ok, err := c.bounded(timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Text(selector, &text, chromedp.ByQuery),
	)
	if err != nil || !ok {
		return "", ok, err
	}
	return text, true, nil
}

func (c *Chrome) Evaluate(expr string, out any) error {
	return chromedp.Run(c.ctx, chromedp.Evaluate(expr, out))
}

// Cookies returns every cookie the browser currently holds, across all
// domains.
func (c *Chrome) Cookies() ([]*network.Cookie, error) {
	var cookies []*network.Cookie

	err := chromedp.Run(c.ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = storage.GetCookies().Do(ctx)
			return err
		}),
	)

	return cookies, err
}

func (c *Chrome) SetCookies(cookies []*network.Cookie) error {
	return chromedp.Run(c.ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			for _, ck := range cookies {
				err := network.SetCookie(ck.Name, ck.Value).
					WithDomain(ck.Domain).
					WithPath(ck.Path).
					WithSecure(ck.Secure).
					WithHTTPOnly(ck.HTTPOnly).
					WithSameSite(ck.SameSite).
					Do(ctx)

				if err != nil {
					return fmt.Errorf("set cookie %s: %w", ck.Name, err)
				}
			}
			return nil
		}),
	)
}

func (c *Chrome) ClearCookies() error {
	return chromedp.Run(c.ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return network.ClearBrowserCookies().Do(ctx)
		}),
	)
}

// LocalStorage reads the full local storage of the current page.
func (c *Chrome) LocalStorage() (map[string]string, error) {
	items := make(map[string]string)
	err := c.Evaluate(`(() => {
		const items = {};
		for (let i = 0; i < window.localStorage.length; i++) {
			const key = window.localStorage.key(i);
			items[key] = window.localStorage.getItem(key);
		}
		return items;
	})()`, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Chrome) SetLocalStorageItem(key, value string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Evaluate(fmt.Sprintf("window.localStorage.setItem(%s, %s)", k, v), nil)
}
