// File: internal/browser/cdpdriver/cookies.go
package cdpdriver

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/xkilldash9x/automaweb/internal/cookies"
)

// Cookies returns the cookies visible to the current page.
func (d *Driver) Cookies(ctx context.Context) ([]cookies.Record, error) {
	var out []cookies.Record
	err := d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		list, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		out = make([]cookies.Record, 0, len(list))
		for _, c := range list {
			out = append(out, fromNetworkCookie(c))
		}
		return nil
	}))
	return out, err
}

// fromNetworkCookie converts a DevTools cookie to the exported record shape.
func fromNetworkCookie(c *network.Cookie) cookies.Record {
	rec := cookies.Record{
		cookies.KeyName:     c.Name,
		cookies.KeyValue:    c.Value,
		cookies.KeyDomain:   c.Domain,
		cookies.KeyPath:     c.Path,
		cookies.KeyHTTPOnly: c.HTTPOnly,
		cookies.KeySecure:   c.Secure,
	}
	if !c.Session && c.Expires > 0 {
		rec[cookies.KeyExpiry] = int64(c.Expires)
	}
	if c.SameSite != "" {
		rec[cookies.KeySameSite] = c.SameSite.String()
	}
	return rec
}

// AddCookie sets a cookie for the current page's URL, so the browser picks the domain.
func (d *Driver) AddCookie(ctx context.Context, c cookies.Record) error {
	return d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var url string
		if err := chromedp.Location(&url).Do(ctx); err != nil {
			return err
		}
		params, err := toSetCookie(c, url)
		if err != nil {
			return err
		}
		return params.Do(ctx)
	}))
}

// toSetCookie builds the DevTools request for a normalized record.
func toSetCookie(c cookies.Record, url string) (*network.SetCookieParams, error) {
	name := c.String(cookies.KeyName)
	if name == "" {
		return nil, fmt.Errorf("cookie has no name")
	}
	p := network.SetCookie(name, c.String(cookies.KeyValue)).
		WithURL(url).
		WithHTTPOnly(c.Bool(cookies.KeyHTTPOnly)).
		WithSecure(c.Bool(cookies.KeySecure))
	if path := c.String(cookies.KeyPath); path != "" {
		p = p.WithPath(path)
	}
	if domain := c.String(cookies.KeyDomain); domain != "" {
		p = p.WithDomain(domain)
	}
	if exp, ok := c.Expiry(); ok {
		t := cdp.TimeSinceEpoch(time.Unix(exp, 0))
		p = p.WithExpires(&t)
	}
	return p, nil
}
