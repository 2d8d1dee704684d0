// File: internal/browser/cdpdriver/dom.go
package cdpdriver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"github.com/xkilldash9x/automaweb/internal/browser"
)

// objectGroup scopes every remote object created by one driver call so they
// can be released together.
const objectGroup = "automaweb"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JavaScript bodies. `this` is a Document for snapshot functions and an
// Element for everything else.
const (
	jsSnapshot = `function() {
	const r = this.evaluate(%s, this, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	const out = [];
	for (let i = 0; i < r.snapshotLength; i++) {
		const n = r.snapshotItem(i);
		if (n.nodeType === Node.ELEMENT_NODE) out.push(n);
	}
	return out;
}`
	jsItem   = `function() { return this[%d] || null; }`
	jsLength = `function() { return this.length; }`

	jsContentDocument = `function() {
	if (!this.contentDocument) throw new Error('frame is not accessible');
	return this.contentDocument;
}`

	jsState = `function() {
	const view = this.ownerDocument.defaultView;
	const style = view ? view.getComputedStyle(this) : null;
	const rect = this.getBoundingClientRect();
	const visible = this.isConnected && rect.width > 0 && rect.height > 0 &&
		(!style || (style.visibility !== 'hidden' && style.display !== 'none'));
	return { visible: visible, enabled: !this.disabled };
}`

	jsHitTest = `function() {
	const r = this.getBoundingClientRect();
	const hit = this.ownerDocument.elementFromPoint(r.left + r.width / 2, r.top + r.height / 2);
	if (hit === null || hit === this || this.contains(hit)) return '';
	let d = hit.tagName.toLowerCase();
	if (hit.id) d += '#' + hit.id;
	if (typeof hit.className === 'string' && hit.className) d += '.' + hit.className.trim().split(/\s+/).join('.');
	return d;
}`

	jsCaretToEnd = `function() {
	if (typeof this.setSelectionRange === 'function' && typeof this.value === 'string') {
		try { this.setSelectionRange(this.value.length, this.value.length); } catch (e) {}
	}
}`

	jsClear = `function() {
	if (!('value' in this) && !this.isContentEditable) throw new Error('element not interactable: cannot clear');
	if (this.isContentEditable && !('value' in this)) { this.textContent = ''; } else { this.value = ''; }
	this.dispatchEvent(new Event('input', { bubbles: true }));
	this.dispatchEvent(new Event('change', { bubbles: true }));
}`

	jsSelect = `function(mode, want) {
	if (this.tagName.toLowerCase() !== 'select') return 'not-select';
	for (const o of this.options) {
		const text = (o.text || '').replace(/\s+/g, ' ').trim();
		if ((mode === 'text' && text === want) || (mode === 'value' && o.value === want)) {
			if (o.disabled) return 'disabled';
			o.selected = true;
			this.dispatchEvent(new Event('input', { bubbles: true }));
			this.dispatchEvent(new Event('change', { bubbles: true }));
			return '';
		}
	}
	return 'no-option';
}`

	jsSelectedText = `function() {
	if (this.tagName.toLowerCase() !== 'select') return { ok: false, reason: 'not-select' };
	for (const o of this.options) {
		if (o.selected) return { ok: true, text: (o.text || '').replace(/\s+/g, ' ').trim() };
	}
	return { ok: false, reason: 'no-option' };
}`

	jsText = `function() {
	return (typeof this.innerText === 'string' ? this.innerText : this.textContent || '').trim();
}`

	jsAttribute = `function(name) {
	const prop = this[name];
	if (prop !== undefined && prop !== null && typeof prop !== 'object' && typeof prop !== 'function') return String(prop);
	const attr = this.getAttribute(name);
	return attr === null ? '' : attr;
}`

	jsScrollIntoView = `function() { this.scrollIntoView(true); }`
	jsIsSelected     = `function() { return !!(this.checked || this.selected); }`
	jsIsEnabled      = `function() { return !this.disabled; }`

	jsDescribe = `function() {
	const attrs = {};
	for (const a of this.attributes) attrs[a.name] = a.value;
	return {
		tag: this.tagName.toLowerCase(),
		text: (typeof this.innerText === 'string' ? this.innerText : this.textContent || '').trim(),
		attributes: attrs,
	};
}`
)

// elementState is the result of jsState.
type elementState struct {
	Visible bool `json:"visible"`
	Enabled bool `json:"enabled"`
}

// callValue runs fn on the remote object and decodes its JSON result into res.
// Extra args are passed to fn as JSON values.
func callValue(ctx context.Context, obj runtime.RemoteObjectID, fn string, res any, args ...any) error {
	return chromedp.CallFunctionOn(fn, res, func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
		return p.WithObjectID(obj).WithObjectGroup(objectGroup)
	}, args...).Do(ctx)
}

// callObject runs fn on obj and returns the resulting remote object ID, or ""
// when the function returned null or undefined.
func callObject(ctx context.Context, obj runtime.RemoteObjectID, fn string) (runtime.RemoteObjectID, error) {
	res, exc, err := runtime.CallFunctionOn(fn).
		WithObjectID(obj).
		WithObjectGroup(objectGroup).
		Do(ctx)
	if err != nil {
		return "", err
	}
	if exc != nil {
		return "", exceptionError(exc)
	}
	if res == nil {
		return "", nil
	}
	return res.ObjectID, nil
}

func exceptionError(exc *runtime.ExceptionDetails) error {
	msg := exc.Text
	if exc.Exception != nil && exc.Exception.Description != "" {
		msg = exc.Exception.Description
	}
	return classify(errors.New(msg))
}

// topDocument returns the main frame's document.
func topDocument(ctx context.Context) (runtime.RemoteObjectID, error) {
	res, exc, err := runtime.Evaluate("document").WithObjectGroup(objectGroup).Do(ctx)
	if err != nil {
		return "", err
	}
	if exc != nil {
		return "", exceptionError(exc)
	}
	return res.ObjectID, nil
}

// scope resolves the document that lookups run against, walking down the
// entered frames from the top-level document.
func (d *Driver) scope(ctx context.Context) (runtime.RemoteObjectID, error) {
	doc, err := topDocument(ctx)
	if err != nil {
		return "", err
	}
	d.mu.Lock()
	frames := append([]string(nil), d.frames...)
	d.mu.Unlock()

	for _, xp := range frames {
		frame, err := firstIn(ctx, doc, xp)
		if err != nil {
			return "", fmt.Errorf("entered frame %s: %w", xp, err)
		}
		if doc, err = callObject(ctx, frame, jsContentDocument); err != nil {
			return "", fmt.Errorf("entered frame %s: %w", xp, err)
		}
	}
	return doc, nil
}

// snapshot evaluates xpath against doc and returns the remote array of matches.
func snapshot(ctx context.Context, doc runtime.RemoteObjectID, xpath string) (runtime.RemoteObjectID, error) {
	quoted, err := json.MarshalToString(xpath)
	if err != nil {
		return "", err
	}
	arr, err := callObject(ctx, doc, fmt.Sprintf(jsSnapshot, quoted))
	if err != nil {
		return "", fmt.Errorf("invalid locator %q: %w", xpath, err)
	}
	return arr, nil
}

// firstIn returns the first element matching xpath in doc.
func firstIn(ctx context.Context, doc runtime.RemoteObjectID, xpath string) (runtime.RemoteObjectID, error) {
	arr, err := snapshot(ctx, doc, xpath)
	if err != nil {
		return "", err
	}
	el, err := callObject(ctx, arr, fmt.Sprintf(jsItem, 0))
	if err != nil {
		return "", err
	}
	if el == "" {
		return "", fmt.Errorf("%w: %s", browser.ErrNoSuchElement, xpath)
	}
	return el, nil
}

// allIn returns every element matching xpath in doc.
func allIn(ctx context.Context, doc runtime.RemoteObjectID, xpath string) ([]runtime.RemoteObjectID, error) {
	arr, err := snapshot(ctx, doc, xpath)
	if err != nil {
		return nil, err
	}
	var n int
	if err := callValue(ctx, arr, jsLength, &n); err != nil {
		return nil, err
	}
	out := make([]runtime.RemoteObjectID, 0, n)
	for i := 0; i < n; i++ {
		el, err := callObject(ctx, arr, fmt.Sprintf(jsItem, i))
		if err != nil {
			return nil, err
		}
		if el != "" {
			out = append(out, el)
		}
	}
	return out, nil
}

// withElement resolves the first match for xpath in the current scope and
// hands it to fn. Remote objects are released afterwards.
func (d *Driver) withElement(ctx context.Context, xpath string, fn func(ctx context.Context, el runtime.RemoteObjectID) error) error {
	return d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		defer releaseGroup(ctx)
		doc, err := d.scope(ctx)
		if err != nil {
			return err
		}
		el, err := firstIn(ctx, doc, xpath)
		if err != nil {
			return err
		}
		return fn(ctx, el)
	}))
}

func releaseGroup(ctx context.Context) {
	_ = runtime.ReleaseObjectGroup(objectGroup).Do(detach(ctx))
}

// classify maps DevTools and page errors onto the browser sentinels. The
// protocol only reports these conditions as text.
func classify(err error) error {
	if err == nil {
		return nil
	}
	known := []struct {
		sentinel  error
		fragments []string
	}{
		{browser.ErrStaleElement, []string{
			"Could not find object with given id",
			"Could not find node with given id",
			"No node with given id",
			"Node is detached",
			"Cannot find context with specified id",
			"Execution context was destroyed",
			"Inspected target navigated or closed",
		}},
		{browser.ErrNotInteractable, []string{
			"element not interactable",
			"Node does not have a layout object",
			"Could not compute content quads",
			"Element is not focusable",
			"frame is not accessible",
		}},
		{browser.ErrClickIntercepted, []string{
			"click intercepted",
		}},
	}
	for _, k := range known {
		if errors.Is(err, k.sentinel) {
			return err
		}
		for _, frag := range k.fragments {
			if strings.Contains(err.Error(), frag) {
				return fmt.Errorf("%w: %v", k.sentinel, err)
			}
		}
	}
	return err
}
