// File: internal/browser/cdpdriver/actions.go
package cdpdriver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/xkilldash9x/automaweb/internal/browser"
)

// pollInterval is how often Wait re-evaluates its condition.
const pollInterval = 100 * time.Millisecond

// Wait polls until the first match for xpath satisfies cond or timeout elapses.
func (d *Driver) Wait(ctx context.Context, xpath string, cond browser.Condition, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var last error
	for {
		met, err := d.check(waitCtx, xpath, cond)
		if met {
			return nil
		}
		if err != nil {
			last = err
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if last != nil && !errors.Is(last, context.DeadlineExceeded) {
				return fmt.Errorf("%w: %s not %s after %s: %v", browser.ErrElementTimeout, xpath, cond, timeout, last)
			}
			return fmt.Errorf("%w: %s not %s after %s", browser.ErrElementTimeout, xpath, cond, timeout)
		case <-ticker.C:
		}
	}
}

// check evaluates cond once.
func (d *Driver) check(ctx context.Context, xpath string, cond browser.Condition) (bool, error) {
	var state elementState
	err := d.withElement(ctx, xpath, func(ctx context.Context, el runtime.RemoteObjectID) error {
		return callValue(ctx, el, jsState, &state)
	})

	switch cond {
	case browser.Present:
		return err == nil, err
	case browser.Clickable:
		return err == nil && state.Visible && state.Enabled, err
	case browser.Hidden:
		if errors.Is(err, browser.ErrNoSuchElement) {
			return true, nil
		}
		return err == nil && !state.Visible, err
	}
	return false, fmt.Errorf("unknown condition %d", cond)
}

// EnterFrame waits for the iframe at xpath and scopes later lookups to its document.
func (d *Driver) EnterFrame(ctx context.Context, xpath string, timeout time.Duration) error {
	if err := d.Wait(ctx, xpath, browser.Present, timeout); err != nil {
		return err
	}
	err := d.withElement(ctx, xpath, func(ctx context.Context, el runtime.RemoteObjectID) error {
		_, err := callObject(ctx, el, jsContentDocument)
		return err
	})
	if err != nil {
		return fmt.Errorf("cannot enter frame %s: %w", xpath, err)
	}
	d.mu.Lock()
	d.frames = append(d.frames, xpath)
	d.mu.Unlock()
	return nil
}

func (d *Driver) ExitFrame(ctx context.Context) error {
	d.resetFrames()
	return nil
}

// center returns the viewport coordinates of the middle of the element's first box.
func center(ctx context.Context, el runtime.RemoteObjectID) (float64, float64, error) {
	if err := dom.ScrollIntoViewIfNeeded().WithObjectID(el).Do(ctx); err != nil {
		return 0, 0, classify(err)
	}
	quads, err := dom.GetContentQuads().WithObjectID(el).Do(ctx)
	if err != nil {
		return 0, 0, classify(err)
	}
	if len(quads) == 0 || len(quads[0]) < 8 {
		return 0, 0, fmt.Errorf("%w: element has no visible box", browser.ErrNotInteractable)
	}
	q := quads[0]
	x := (q[0] + q[2] + q[4] + q[6]) / 4
	y := (q[1] + q[3] + q[5] + q[7]) / 4
	return x, y, nil
}

// Click presses the left button over the element after checking that
// nothing else sits on top of it.
func (d *Driver) Click(ctx context.Context, xpath string) error {
	return d.withElement(ctx, xpath, func(ctx context.Context, el runtime.RemoteObjectID) error {
		x, y, err := center(ctx, el)
		if err != nil {
			return err
		}
		var obstruction string
		if err := callValue(ctx, el, jsHitTest, &obstruction); err != nil {
			return classify(err)
		}
		if obstruction != "" {
			return fmt.Errorf("%w: %s would receive the click", browser.ErrClickIntercepted, obstruction)
		}
		return chromedp.MouseClickXY(x, y).Do(ctx)
	})
}

// Hover moves the pointer to the centre of the element.
func (d *Driver) Hover(ctx context.Context, xpath string) error {
	return d.withElement(ctx, xpath, func(ctx context.Context, el runtime.RemoteObjectID) error {
		x, y, err := center(ctx, el)
		if err != nil {
			return err
		}
		return chromedp.MouseEvent(input.MouseMoved, x, y).Do(ctx)
	})
}

// Type focuses the element and sends text as key events after any existing value.
func (d *Driver) Type(ctx context.Context, xpath, text string) error {
	return d.withElement(ctx, xpath, func(ctx context.Context, el runtime.RemoteObjectID) error {
		if err := dom.Focus().WithObjectID(el).Do(ctx); err != nil {
			return classify(err)
		}
		if err := callValue(ctx, el, jsCaretToEnd, nil); err != nil {
			return classify(err)
		}
		return chromedp.KeyEvent(text).Do(ctx)
	})
}

func (d *Driver) Clear(ctx context.Context, xpath string) error {
	return d.withElement(ctx, xpath, func(ctx context.Context, el runtime.RemoteObjectID) error {
		return classify(callValue(ctx, el, jsClear, nil))
	})
}

func (d *Driver) SelectByText(ctx context.Context, xpath, text string) error {
	return d.selectOption(ctx, xpath, "text", text)
}

func (d *Driver) SelectByValue(ctx context.Context, xpath, value string) error {
	return d.selectOption(ctx, xpath, "value", value)
}

func (d *Driver) selectOption(ctx context.Context, xpath, mode, want string) error {
	return d.withElement(ctx, xpath, func(ctx context.Context, el runtime.RemoteObjectID) error {
		var outcome string
		if err := callValue(ctx, el, jsSelect, &outcome, mode, want); err != nil {
			return classify(err)
		}
		switch outcome {
		case "":
			return nil
		case "not-select":
			return fmt.Errorf("%w: %s", browser.ErrNotSelect, xpath)
		case "disabled":
			return fmt.Errorf("%w: option %q is disabled", browser.ErrNotInteractable, want)
		default:
			return fmt.Errorf("%w: %s %q in %s", browser.ErrNoSuchOption, mode, want, xpath)
		}
	})
}

func (d *Driver) Text(ctx context.Context, xpath string) (string, error) {
	var text string
	err := d.withElement(ctx, xpath, func(ctx context.Context, el runtime.RemoteObjectID) error {
		return callValue(ctx, el, jsText, &text)
	})
	return text, err
}

func (d *Driver) Attribute(ctx context.Context, xpath, name string) (string, error) {
	var value string
	err := d.withElement(ctx, xpath, func(ctx context.Context, el runtime.RemoteObjectID) error {
		return callValue(ctx, el, jsAttribute, &value, name)
	})
	return value, err
}

func (d *Driver) ScrollIntoView(ctx context.Context, xpath string) error {
	return d.withElement(ctx, xpath, func(ctx context.Context, el runtime.RemoteObjectID) error {
		return callValue(ctx, el, jsScrollIntoView, nil)
	})
}

func (d *Driver) SelectedText(ctx context.Context, xpath string) (string, error) {
	var res struct {
		OK     bool   `json:"ok"`
		Text   string `json:"text"`
		Reason string `json:"reason"`
	}
	err := d.withElement(ctx, xpath, func(ctx context.Context, el runtime.RemoteObjectID) error {
		return callValue(ctx, el, jsSelectedText, &res)
	})
	if err != nil {
		return "", err
	}
	if !res.OK {
		if res.Reason == "not-select" {
			return "", fmt.Errorf("%w: %s", browser.ErrNotSelect, xpath)
		}
		return "", fmt.Errorf("%w: nothing selected in %s", browser.ErrNoSuchOption, xpath)
	}
	return res.Text, nil
}

func (d *Driver) IsSelected(ctx context.Context, xpath string) (bool, error) {
	var selected bool
	err := d.withElement(ctx, xpath, func(ctx context.Context, el runtime.RemoteObjectID) error {
		return callValue(ctx, el, jsIsSelected, &selected)
	})
	return selected, err
}

func (d *Driver) IsEnabled(ctx context.Context, xpath string) (bool, error) {
	var enabled bool
	err := d.withElement(ctx, xpath, func(ctx context.Context, el runtime.RemoteObjectID) error {
		return callValue(ctx, el, jsIsEnabled, &enabled)
	})
	return enabled, err
}

// FindAll snapshots every element matching xpath in the current scope.
func (d *Driver) FindAll(ctx context.Context, xpath string) ([]browser.Element, error) {
	var out []browser.Element
	err := d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		defer releaseGroup(ctx)
		doc, err := d.scope(ctx)
		if err != nil {
			return err
		}
		els, err := allIn(ctx, doc, xpath)
		if err != nil {
			return err
		}
		out = make([]browser.Element, 0, len(els))
		for i, el := range els {
			var desc struct {
				Tag        string            `json:"tag"`
				Text       string            `json:"text"`
				Attributes map[string]string `json:"attributes"`
			}
			if err := callValue(ctx, el, jsDescribe, &desc); err != nil {
				return err
			}
			out = append(out, browser.Element{
				XPath:      fmt.Sprintf("(%s)[%d]", xpath, i+1),
				Tag:        desc.Tag,
				Text:       desc.Text,
				Attributes: desc.Attributes,
			})
		}
		return nil
	}))
	return out, err
}
