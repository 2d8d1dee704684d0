// File: internal/browser/errors.go
package browser

import "errors"

var (
	// ErrNotOpen is returned by every Navigator method called before Open or after Close.
	ErrNotOpen = errors.New("browser is not open")
	// ErrAlreadyOpen is returned when Open is called on a live session.
	ErrAlreadyOpen = errors.New("browser is already open")
	// ErrUnsupportedBrowser is returned when no backend can drive the configured browser.
	ErrUnsupportedBrowser = errors.New("unsupported browser")

	// ErrElementTimeout means the locator never reached the requested condition.
	ErrElementTimeout = errors.New("timed out waiting for element")
	// ErrNoSuchElement means the locator matched nothing.
	ErrNoSuchElement = errors.New("no element matches locator")
	// ErrNoSuchTab is returned when switching to a tab index that does not exist.
	ErrNoSuchTab = errors.New("no tab at index")
	// ErrNotSelect is returned by select helpers used on anything but a <select>.
	ErrNotSelect = errors.New("element is not a select")
	// ErrNoSuchOption is returned when a select has no option with the requested text or value.
	ErrNoSuchOption = errors.New("no matching option")

	// Transient conditions. Backends wrap their native errors in these so
	// that the retry policy can recognise them.
	ErrClickIntercepted = errors.New("element click intercepted")
	ErrNotInteractable  = errors.New("element not interactable")
	ErrStaleElement     = errors.New("stale element reference")
)

// IsTransient reports whether err is a condition that usually clears up on
// its own: the element is covered, not yet interactive, or was re-rendered.
func IsTransient(err error) bool {
	return errors.Is(err, ErrClickIntercepted) ||
		errors.Is(err, ErrNotInteractable) ||
		errors.Is(err, ErrStaleElement)
}
