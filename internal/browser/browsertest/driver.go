// File: internal/browser/browsertest/driver.go

// Package browsertest provides an in-memory browser.Driver for tests.
package browsertest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xkilldash9x/automaweb/internal/browser"
	"github.com/xkilldash9x/automaweb/internal/config"
	"github.com/xkilldash9x/automaweb/internal/cookies"
	"go.uber.org/zap"
)

// Node is a fake element addressed by its exact XPath string.
type Node struct {
	Tag        string
	Text       string
	Attributes map[string]string
	Hidden     bool
	Disabled   bool
	Selected   bool
	Options    []Option
}

// Option is an <option> of a fake <select>.
type Option struct {
	Text     string
	Value    string
	Selected bool
}

// Call records one driver invocation.
type Call struct {
	Method string
	XPath  string
	Arg    string
}

// Driver is a scriptable fake. Page content lives in Nodes; failures are
// queued per method with Fail.
type Driver struct {
	mu sync.Mutex

	Nodes   map[string]*Node
	Tabs    []string
	Current int
	Frames  []string
	Jar     []cookies.Record
	PNG     []byte
	Quitted bool

	// RejectCookie, when set, decides whether AddCookie fails for a record.
	RejectCookie func(cookies.Record) error

	failures map[string][]error
	calls    []Call
}

var _ browser.Driver = (*Driver)(nil)

// New returns a driver with a single blank tab.
func New() *Driver {
	return &Driver{
		Nodes:    map[string]*Node{},
		Tabs:     []string{"about:blank"},
		PNG:      []byte("\x89PNG\r\n\x1a\n"),
		failures: map[string][]error{},
	}
}

// Launcher returns a browser.Launcher that hands out d.
func (d *Driver) Launcher() browser.Launcher {
	return func(context.Context, config.BrowserConfig, *zap.Logger) (browser.Driver, error) {
		return d, nil
	}
}

// FailingLauncher returns a browser.Launcher that always fails with err.
func FailingLauncher(err error) browser.Launcher {
	return func(context.Context, config.BrowserConfig, *zap.Logger) (browser.Driver, error) {
		return nil, err
	}
}

// Add registers a node and returns it for further tweaking.
func (d *Driver) Add(xpath string, n *Node) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n.Attributes == nil {
		n.Attributes = map[string]string{}
	}
	d.Nodes[xpath] = n
	return n
}

// Fail queues errors returned, in order, by the next calls to method.
func (d *Driver) Fail(method string, errs ...error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[method] = append(d.failures[method], errs...)
}

// Calls returns the recorded invocations, optionally only those of method.
func (d *Driver) Calls(method string) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Call
	for _, c := range d.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// URL returns the address of the focused tab.
func (d *Driver) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Tabs[d.Current]
}

// enter records the call and pops a queued failure. Callers hold no lock.
func (d *Driver) enter(method, xpath, arg string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, Call{Method: method, XPath: xpath, Arg: arg})
	if q := d.failures[method]; len(q) > 0 {
		d.failures[method] = q[1:]
		return q[0]
	}
	return nil
}

func (d *Driver) node(xpath string) (*Node, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.Nodes[xpath]
	if !ok {
		return nil, fmt.Errorf("%w: %s", browser.ErrNoSuchElement, xpath)
	}
	return n, nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := d.enter("Navigate", "", url); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Tabs[d.Current] = url
	d.Frames = nil
	return nil
}

func (d *Driver) NewTab(ctx context.Context, url string) error {
	if err := d.enter("NewTab", "", url); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Tabs = append(d.Tabs, url)
	d.Current = len(d.Tabs) - 1
	return nil
}

func (d *Driver) SwitchTab(ctx context.Context, index int) error {
	if err := d.enter("SwitchTab", "", fmt.Sprint(index)); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.Tabs) {
		return fmt.Errorf("%w %d", browser.ErrNoSuchTab, index)
	}
	d.Current = index
	return nil
}

func (d *Driver) CloseTab(ctx context.Context) error {
	if err := d.enter("CloseTab", "", ""); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Tabs = append(d.Tabs[:d.Current], d.Tabs[d.Current+1:]...)
	if len(d.Tabs) == 0 {
		d.Tabs = []string{"about:blank"}
	}
	d.Current = len(d.Tabs) - 1
	return nil
}

func (d *Driver) Reload(ctx context.Context) error {
	return d.enter("Reload", "", "")
}

func (d *Driver) EnterFrame(ctx context.Context, xpath string, timeout time.Duration) error {
	if err := d.enter("EnterFrame", xpath, ""); err != nil {
		return err
	}
	if _, err := d.node(xpath); err != nil {
		return fmt.Errorf("%w: frame %s", browser.ErrElementTimeout, xpath)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Frames = append(d.Frames, xpath)
	return nil
}

func (d *Driver) ExitFrame(ctx context.Context) error {
	if err := d.enter("ExitFrame", "", ""); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Frames = nil
	return nil
}

func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	if err := d.enter("Screenshot", "", ""); err != nil {
		return nil, err
	}
	return d.PNG, nil
}

// Wait evaluates the condition once; a fake page never changes on its own.
func (d *Driver) Wait(ctx context.Context, xpath string, cond browser.Condition, timeout time.Duration) error {
	if err := d.enter("Wait", xpath, cond.String()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	n, ok := d.Nodes[xpath]
	d.mu.Unlock()

	var met bool
	switch cond {
	case browser.Present:
		met = ok
	case browser.Clickable:
		met = ok && !n.Hidden && !n.Disabled
	case browser.Hidden:
		met = !ok || n.Hidden
	}
	if !met {
		return fmt.Errorf("%w: %s not %s after %s", browser.ErrElementTimeout, xpath, cond, timeout)
	}
	return nil
}

func (d *Driver) Click(ctx context.Context, xpath string) error {
	if err := d.enter("Click", xpath, ""); err != nil {
		return err
	}
	n, err := d.node(xpath)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if t := n.Attributes["type"]; t == "checkbox" {
		n.Selected = !n.Selected
	} else if t == "radio" {
		n.Selected = true
	}
	return nil
}

func (d *Driver) Type(ctx context.Context, xpath, text string) error {
	if err := d.enter("Type", xpath, text); err != nil {
		return err
	}
	n, err := d.node(xpath)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	n.Attributes["value"] += text
	return nil
}

func (d *Driver) Clear(ctx context.Context, xpath string) error {
	if err := d.enter("Clear", xpath, ""); err != nil {
		return err
	}
	n, err := d.node(xpath)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	n.Attributes["value"] = ""
	return nil
}

func (d *Driver) Hover(ctx context.Context, xpath string) error {
	if err := d.enter("Hover", xpath, ""); err != nil {
		return err
	}
	_, err := d.node(xpath)
	return err
}

func (d *Driver) SelectByText(ctx context.Context, xpath, text string) error {
	if err := d.enter("SelectByText", xpath, text); err != nil {
		return err
	}
	return d.selectWhere(xpath, func(o Option) bool { return o.Text == text })
}

func (d *Driver) SelectByValue(ctx context.Context, xpath, value string) error {
	if err := d.enter("SelectByValue", xpath, value); err != nil {
		return err
	}
	return d.selectWhere(xpath, func(o Option) bool { return o.Value == value })
}

func (d *Driver) selectWhere(xpath string, match func(Option) bool) error {
	n, err := d.node(xpath)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if n.Tag != "select" {
		return fmt.Errorf("%w: %s", browser.ErrNotSelect, xpath)
	}
	idx := -1
	for i, o := range n.Options {
		if match(o) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w in %s", browser.ErrNoSuchOption, xpath)
	}
	for i := range n.Options {
		n.Options[i].Selected = i == idx
	}
	return nil
}

func (d *Driver) Text(ctx context.Context, xpath string) (string, error) {
	if err := d.enter("Text", xpath, ""); err != nil {
		return "", err
	}
	n, err := d.node(xpath)
	if err != nil {
		return "", err
	}
	return n.Text, nil
}

func (d *Driver) Attribute(ctx context.Context, xpath, name string) (string, error) {
	if err := d.enter("Attribute", xpath, name); err != nil {
		return "", err
	}
	n, err := d.node(xpath)
	if err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return n.Attributes[name], nil
}

func (d *Driver) ScrollIntoView(ctx context.Context, xpath string) error {
	if err := d.enter("ScrollIntoView", xpath, ""); err != nil {
		return err
	}
	_, err := d.node(xpath)
	return err
}

// FindAll matches nodes whose key starts with xpath, so "//li" finds
// "//li[1]", "//li[2]" and so on, ordered by key.
func (d *Driver) FindAll(ctx context.Context, xpath string) ([]browser.Element, error) {
	if err := d.enter("FindAll", xpath, ""); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var keys []string
	for k := range d.Nodes {
		if len(k) >= len(xpath) && k[:len(xpath)] == xpath {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]browser.Element, 0, len(keys))
	for _, k := range keys {
		n := d.Nodes[k]
		attrs := make(map[string]string, len(n.Attributes))
		for ak, av := range n.Attributes {
			attrs[ak] = av
		}
		out = append(out, browser.Element{XPath: k, Tag: n.Tag, Text: n.Text, Attributes: attrs})
	}
	return out, nil
}

func (d *Driver) SelectedText(ctx context.Context, xpath string) (string, error) {
	if err := d.enter("SelectedText", xpath, ""); err != nil {
		return "", err
	}
	n, err := d.node(xpath)
	if err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if n.Tag != "select" {
		return "", fmt.Errorf("%w: %s", browser.ErrNotSelect, xpath)
	}
	for _, o := range n.Options {
		if o.Selected {
			return o.Text, nil
		}
	}
	return "", fmt.Errorf("%w: nothing selected in %s", browser.ErrNoSuchOption, xpath)
}

func (d *Driver) IsSelected(ctx context.Context, xpath string) (bool, error) {
	if err := d.enter("IsSelected", xpath, ""); err != nil {
		return false, err
	}
	n, err := d.node(xpath)
	if err != nil {
		return false, err
	}
	return n.Selected, nil
}

func (d *Driver) IsEnabled(ctx context.Context, xpath string) (bool, error) {
	if err := d.enter("IsEnabled", xpath, ""); err != nil {
		return false, err
	}
	n, err := d.node(xpath)
	if err != nil {
		return false, err
	}
	return !n.Disabled, nil
}

func (d *Driver) Cookies(ctx context.Context) ([]cookies.Record, error) {
	if err := d.enter("Cookies", "", ""); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]cookies.Record(nil), d.Jar...), nil
}

func (d *Driver) AddCookie(ctx context.Context, c cookies.Record) error {
	if err := d.enter("AddCookie", "", c.Name()); err != nil {
		return err
	}
	if d.RejectCookie != nil {
		if err := d.RejectCookie(c); err != nil {
			return err
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Jar = append(d.Jar, c)
	return nil
}

func (d *Driver) Quit(ctx context.Context) error {
	if err := d.enter("Quit", "", ""); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Quitted = true
	return nil
}
