// File: internal/browser/pwdriver/cookies.go
package pwdriver

import (
	"context"
	"fmt"
	"net/url"

	"github.com/playwright-community/playwright-go"
	"github.com/xkilldash9x/automaweb/internal/cookies"
)

// Cookies returns the cookies visible to the current page.
func (d *Driver) Cookies(ctx context.Context) ([]cookies.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, _ := d.current()
	list, err := d.bctx.Cookies(page.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	out := make([]cookies.Record, 0, len(list))
	for _, c := range list {
		out = append(out, fromPlaywrightCookie(c))
	}
	return out, nil
}

// fromPlaywrightCookie converts a context cookie to the exported record shape.
func fromPlaywrightCookie(c playwright.Cookie) cookies.Record {
	rec := cookies.Record{
		cookies.KeyName:     c.Name,
		cookies.KeyValue:    c.Value,
		cookies.KeyDomain:   c.Domain,
		cookies.KeyPath:     c.Path,
		cookies.KeyHTTPOnly: c.HttpOnly,
		cookies.KeySecure:   c.Secure,
	}
	// Session cookies report -1.
	if c.Expires > 0 {
		rec[cookies.KeyExpiry] = int64(c.Expires)
	}
	if c.SameSite != nil {
		rec[cookies.KeySameSite] = string(*c.SameSite)
	}
	return rec
}

// AddCookie sets a cookie on the current page's site.
func (d *Driver) AddCookie(ctx context.Context, c cookies.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, _ := d.current()
	oc, err := toOptionalCookie(c, page.URL())
	if err != nil {
		return err
	}
	if err := d.bctx.AddCookies([]playwright.OptionalCookie{oc}); err != nil {
		return fmt.Errorf("failed to add cookie %s: %w", c.Name(), err)
	}
	return nil
}

// toOptionalCookie builds the Playwright cookie for a normalized record.
// Playwright takes either a URL or a domain and path pair; the pair is used
// whenever the record pins a path or domain.
func toOptionalCookie(c cookies.Record, pageURL string) (playwright.OptionalCookie, error) {
	name := c.String(cookies.KeyName)
	if name == "" {
		return playwright.OptionalCookie{}, fmt.Errorf("cookie has no name")
	}
	oc := playwright.OptionalCookie{
		Name:     name,
		Value:    c.String(cookies.KeyValue),
		HttpOnly: playwright.Bool(c.Bool(cookies.KeyHTTPOnly)),
		Secure:   playwright.Bool(c.Bool(cookies.KeySecure)),
	}
	if exp, ok := c.Expiry(); ok {
		oc.Expires = playwright.Float(float64(exp))
	}

	path := c.String(cookies.KeyPath)
	domain := c.String(cookies.KeyDomain)
	if path == "" && domain == "" {
		oc.URL = playwright.String(pageURL)
		return oc, nil
	}

	if domain == "" {
		u, err := url.Parse(pageURL)
		if err != nil || u.Hostname() == "" {
			return playwright.OptionalCookie{}, fmt.Errorf("cannot derive cookie domain from %q", pageURL)
		}
		domain = u.Hostname()
	}
	if path == "" {
		path = "/"
	}
	oc.Domain = playwright.String(domain)
	oc.Path = playwright.String(path)
	return oc, nil
}
