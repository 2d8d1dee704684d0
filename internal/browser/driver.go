// File: internal/browser/driver.go
package browser

import (
	"context"
	"time"

	"github.com/xkilldash9x/automaweb/internal/config"
	"github.com/xkilldash9x/automaweb/internal/cookies"
	"go.uber.org/zap"
)

// Condition is the state an element must reach before Driver.Wait returns.
type Condition int

const (
	// Present means at least one node matches the locator.
	Present Condition = iota
	// Clickable means the first match is visible and enabled.
	Clickable
	// Hidden means no match is visible, including when nothing matches at all.
	Hidden
)

func (c Condition) String() string {
	switch c {
	case Present:
		return "present"
	case Clickable:
		return "clickable"
	case Hidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// Element is a snapshot of one node matched by FindAll.
type Element struct {
	// XPath addresses this particular match, e.g. "(//li)[3]".
	XPath      string
	Tag        string
	Text       string
	Attributes map[string]string
}

// Driver is a live connection to one browser process. Locators are always
// XPath expressions evaluated in the current frame of the current tab.
//
// Element methods act on the first match and do not wait; callers use Wait
// first. Implementations wrap obstruction, non-interactable and stale-node
// failures in ErrClickIntercepted, ErrNotInteractable and ErrStaleElement,
// and expired waits in ErrElementTimeout.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	NewTab(ctx context.Context, url string) error
	SwitchTab(ctx context.Context, index int) error
	// CloseTab closes the current tab and focuses the last remaining one.
	CloseTab(ctx context.Context) error
	Reload(ctx context.Context) error
	EnterFrame(ctx context.Context, xpath string, timeout time.Duration) error
	ExitFrame(ctx context.Context) error
	// Screenshot returns the visible viewport as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)

	Wait(ctx context.Context, xpath string, cond Condition, timeout time.Duration) error

	Click(ctx context.Context, xpath string) error
	Type(ctx context.Context, xpath, text string) error
	Clear(ctx context.Context, xpath string) error
	Hover(ctx context.Context, xpath string) error
	SelectByText(ctx context.Context, xpath, text string) error
	SelectByValue(ctx context.Context, xpath, value string) error

	Text(ctx context.Context, xpath string) (string, error)
	// Attribute returns "" when the attribute is absent.
	Attribute(ctx context.Context, xpath, name string) (string, error)
	ScrollIntoView(ctx context.Context, xpath string) error
	FindAll(ctx context.Context, xpath string) ([]Element, error)
	SelectedText(ctx context.Context, xpath string) (string, error)
	IsSelected(ctx context.Context, xpath string) (bool, error)
	IsEnabled(ctx context.Context, xpath string) (bool, error)

	Cookies(ctx context.Context) ([]cookies.Record, error)
	AddCookie(ctx context.Context, c cookies.Record) error

	// Quit terminates the browser process.
	Quit(ctx context.Context) error
}

// Launcher starts a browser and returns a Driver for it.
type Launcher func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (Driver, error)

// HideWebdriverScript runs before any page script in every new document. It
// removes the navigator.webdriver flag that automation switches on.
const HideWebdriverScript = `Object.defineProperty(Object.getPrototypeOf(navigator), 'webdriver', {
	get: () => undefined,
	configurable: true,
});`
