// File: internal/browser/pwdriver/elements.go
package pwdriver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/playwright-community/playwright-go"
	"github.com/xkilldash9x/automaweb/internal/browser"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Page functions. Each receives the element and one optional argument.
const (
	jsCaretToEnd = `el => {
	if (typeof el.setSelectionRange === 'function' && typeof el.value === 'string') {
		try { el.setSelectionRange(el.value.length, el.value.length); } catch (e) {}
	}
}`

	jsSelectable = `(el, arg) => {
	if (el.tagName.toLowerCase() !== 'select') return 'not-select';
	for (const o of el.options) {
		const text = (o.text || '').replace(/\s+/g, ' ').trim();
		if ((arg.mode === 'text' && text === arg.want) || (arg.mode === 'value' && o.value === arg.want)) {
			return o.disabled ? 'disabled' : '';
		}
	}
	return 'no-option';
}`

	jsSelectedText = `el => {
	if (el.tagName.toLowerCase() !== 'select') return { ok: false, reason: 'not-select' };
	for (const o of el.options) {
		if (o.selected) return { ok: true, text: (o.text || '').replace(/\s+/g, ' ').trim() };
	}
	return { ok: false, reason: 'no-option' };
}`

	jsText = `el => (typeof el.innerText === 'string' ? el.innerText : el.textContent || '').trim()`

	jsAttribute = `(el, name) => {
	const prop = el[name];
	if (prop !== undefined && prop !== null && typeof prop !== 'object' && typeof prop !== 'function') return String(prop);
	const attr = el.getAttribute(name);
	return attr === null ? '' : attr;
}`

	jsScrollIntoView = `el => { el.scrollIntoView(true); }`
	jsIsSelected     = `el => !!(el.checked || el.selected)`
	jsIsEnabled      = `el => !el.disabled`

	jsDescribe = `el => {
	const attrs = {};
	for (const a of el.attributes) attrs[a.name] = a.value;
	return {
		tag: el.tagName.toLowerCase(),
		text: (typeof el.innerText === 'string' ? el.innerText : el.textContent || '').trim(),
		attributes: attrs,
	};
}`
)

// selector turns an XPath locator into a Playwright selector.
func selector(xpath string) string {
	return "xpath=" + xpath
}

// locate builds a locator for every match of xpath inside the entered frames.
func (d *Driver) locate(xpath string) playwright.Locator {
	page, frames := d.current()
	if len(frames) == 0 {
		return page.Locator(selector(xpath))
	}
	fl := page.FrameLocator(selector(frames[0])).First()
	for _, f := range frames[1:] {
		fl = fl.FrameLocator(selector(f)).First()
	}
	return fl.Locator(selector(xpath))
}

// element returns the first match for xpath, failing fast when there is none.
func (d *Driver) element(ctx context.Context, xpath string) (playwright.Locator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all := d.locate(xpath)
	n, err := all.Count()
	if err != nil {
		return nil, classify(fmt.Errorf("invalid locator %q: %w", xpath, err))
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", browser.ErrNoSuchElement, xpath)
	}
	return all.First(), nil
}

// eval runs fn against the first match and decodes its result into res.
func (d *Driver) eval(ctx context.Context, xpath, fn string, arg any, res any) error {
	el, err := d.element(ctx, xpath)
	if err != nil {
		return err
	}
	return evalOn(ctx, el, fn, arg, res)
}

func evalOn(ctx context.Context, el playwright.Locator, fn string, arg any, res any) error {
	out, err := el.Evaluate(fn, arg, playwright.LocatorEvaluateOptions{Timeout: timeoutMs(ctx, actionTimeout)})
	if err != nil {
		return classify(err)
	}
	if res == nil {
		return nil
	}
	return decode(out, res)
}

// decode copies a value returned by Playwright into res via JSON.
func decode(v any, res any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, res)
}

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

// check evaluates cond once without waiting.
func (d *Driver) check(ctx context.Context, xpath string, cond browser.Condition) (bool, error) {
	el, err := d.element(ctx, xpath)
	switch {
	case errors.Is(err, browser.ErrNoSuchElement):
		return cond == browser.Hidden, nil
	case err != nil:
		return false, err
	}

	visible, err := el.IsVisible()
	if err != nil {
		return false, classify(err)
	}
	switch cond {
	case browser.Present:
		return true, nil
	case browser.Hidden:
		return !visible, nil
	case browser.Clickable:
		if !visible {
			return false, nil
		}
		enabled, err := el.IsEnabled(playwright.LocatorIsEnabledOptions{Timeout: timeoutMs(ctx, actionTimeout)})
		if err != nil {
			return false, classify(err)
		}
		return enabled, nil
	}
	return false, fmt.Errorf("unknown condition %d", cond)
}

// EnterFrame waits for the iframe at xpath and scopes later lookups to it.
func (d *Driver) EnterFrame(ctx context.Context, xpath string, timeout time.Duration) error {
	if err := d.Wait(ctx, xpath, browser.Present, timeout); err != nil {
		return err
	}
	var tag string
	if err := d.eval(ctx, xpath, `el => el.tagName.toLowerCase()`, nil, &tag); err != nil {
		return fmt.Errorf("cannot enter frame %s: %w", xpath, err)
	}
	if tag != "iframe" && tag != "frame" {
		return fmt.Errorf("cannot enter frame %s: %w: <%s> is not a frame", xpath, browser.ErrNotInteractable, tag)
	}
	d.mu.Lock()
	d.frames = append(d.frames, xpath)
	d.mu.Unlock()
	return nil
}

func (d *Driver) ExitFrame(ctx context.Context) error {
	d.mu.Lock()
	d.frames = nil
	d.mu.Unlock()
	return nil
}

func (d *Driver) Click(ctx context.Context, xpath string) error {
	el, err := d.element(ctx, xpath)
	if err != nil {
		return err
	}
	return classify(el.Click(playwright.LocatorClickOptions{Timeout: timeoutMs(ctx, actionTimeout)}))
}

func (d *Driver) Hover(ctx context.Context, xpath string) error {
	el, err := d.element(ctx, xpath)
	if err != nil {
		return err
	}
	return classify(el.Hover(playwright.LocatorHoverOptions{Timeout: timeoutMs(ctx, actionTimeout)}))
}

// Type focuses the element, moves the caret to the end and sends text as
// key presses, so existing content is kept.
func (d *Driver) Type(ctx context.Context, xpath, text string) error {
	el, err := d.element(ctx, xpath)
	if err != nil {
		return err
	}
	if err := el.Focus(playwright.LocatorFocusOptions{Timeout: timeoutMs(ctx, actionTimeout)}); err != nil {
		return classify(err)
	}
	if err := evalOn(ctx, el, jsCaretToEnd, nil, nil); err != nil {
		return err
	}
	return classify(el.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{Timeout: timeoutMs(ctx, 0)}))
}

func (d *Driver) Clear(ctx context.Context, xpath string) error {
	el, err := d.element(ctx, xpath)
	if err != nil {
		return err
	}
	return classify(el.Clear(playwright.LocatorClearOptions{Timeout: timeoutMs(ctx, actionTimeout)}))
}

func (d *Driver) SelectByText(ctx context.Context, xpath, text string) error {
	return d.selectOption(ctx, xpath, "text", text)
}

func (d *Driver) SelectByValue(ctx context.Context, xpath, value string) error {
	return d.selectOption(ctx, xpath, "value", value)
}

// selectOption checks the option exists before asking Playwright to pick it,
// since Playwright waits for missing options instead of failing.
func (d *Driver) selectOption(ctx context.Context, xpath, mode, want string) error {
	el, err := d.element(ctx, xpath)
	if err != nil {
		return err
	}
	var outcome string
	if err := evalOn(ctx, el, jsSelectable, map[string]string{"mode": mode, "want": want}, &outcome); err != nil {
		return err
	}
	switch outcome {
	case "":
	case "not-select":
		return fmt.Errorf("%w: %s", browser.ErrNotSelect, xpath)
	case "disabled":
		return fmt.Errorf("%w: option %q is disabled", browser.ErrNotInteractable, want)
	default:
		return fmt.Errorf("%w: %s %q in %s", browser.ErrNoSuchOption, mode, want, xpath)
	}

	values := playwright.SelectOptionValues{Values: &[]string{want}}
	if mode == "text" {
		values = playwright.SelectOptionValues{Labels: &[]string{want}}
	}
	_, err = el.SelectOption(values, playwright.LocatorSelectOptionOptions{Timeout: timeoutMs(ctx, actionTimeout)})
	return classify(err)
}

func (d *Driver) Text(ctx context.Context, xpath string) (string, error) {
	var text string
	err := d.eval(ctx, xpath, jsText, nil, &text)
	return text, err
}

func (d *Driver) Attribute(ctx context.Context, xpath, name string) (string, error) {
	var value string
	err := d.eval(ctx, xpath, jsAttribute, name, &value)
	return value, err
}

func (d *Driver) ScrollIntoView(ctx context.Context, xpath string) error {
	return d.eval(ctx, xpath, jsScrollIntoView, nil, nil)
}

func (d *Driver) SelectedText(ctx context.Context, xpath string) (string, error) {
	var res struct {
		OK     bool   `json:"ok"`
		Text   string `json:"text"`
		Reason string `json:"reason"`
	}
	if err := d.eval(ctx, xpath, jsSelectedText, nil, &res); err != nil {
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
	err := d.eval(ctx, xpath, jsIsSelected, nil, &selected)
	return selected, err
}

func (d *Driver) IsEnabled(ctx context.Context, xpath string) (bool, error) {
	var enabled bool
	err := d.eval(ctx, xpath, jsIsEnabled, nil, &enabled)
	return enabled, err
}

// FindAll snapshots every element matching xpath in the current scope.
func (d *Driver) FindAll(ctx context.Context, xpath string) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	els, err := d.locate(xpath).All()
	if err != nil {
		return nil, classify(fmt.Errorf("invalid locator %q: %w", xpath, err))
	}
	out := make([]browser.Element, 0, len(els))
	for i, el := range els {
		var desc struct {
			Tag        string            `json:"tag"`
			Text       string            `json:"text"`
			Attributes map[string]string `json:"attributes"`
		}
		if err := evalOn(ctx, el, jsDescribe, nil, &desc); err != nil {
			return nil, err
		}
		out = append(out, browser.Element{
			XPath:      fmt.Sprintf("(%s)[%d]", xpath, i+1),
			Tag:        desc.Tag,
			Text:       desc.Text,
			Attributes: desc.Attributes,
		})
	}
	return out, nil
}

// classify maps Playwright failures onto the browser sentinels. Actionability
// failures surface as timeouts whose call log names the reason.
func classify(err error) error {
	if err == nil {
		return nil
	}
	known := []struct {
		sentinel  error
		fragments []string
	}{
		{browser.ErrClickIntercepted, []string{
			"intercepts pointer events",
		}},
		{browser.ErrStaleElement, []string{
			"not attached to the DOM",
			"Element is detached",
			"Frame was detached",
			"Execution context was destroyed",
		}},
		{browser.ErrNotInteractable, []string{
			"element is not visible",
			"element is not enabled",
			"element is not editable",
			"element is outside of the viewport",
			"not an <input>, <textarea>",
		}},
	}
	msg := err.Error()
	for _, k := range known {
		if errors.Is(err, k.sentinel) {
			return err
		}
		for _, frag := range k.fragments {
			if strings.Contains(msg, frag) {
				return fmt.Errorf("%w: %v", k.sentinel, err)
			}
		}
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", browser.ErrElementTimeout, err)
	}
	return err
}
