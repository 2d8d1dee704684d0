// File: internal/browser/query.go
package browser

import (
	"context"
	"time"

	"github.com/xkilldash9x/automaweb/internal/retry"
	"go.uber.org/zap"
)

// Text returns the rendered text of the element at xpath.
func (n *Navigator) Text(ctx context.Context, xpath string) (string, error) {
	return query(ctx, n, "Text", xpath, Present, func(ctx context.Context, d Driver) (string, error) {
		return d.Text(ctx, xpath)
	})
}

// Attribute returns the named attribute, e.g. "href" or "value". An absent
// attribute yields "".
func (n *Navigator) Attribute(ctx context.Context, xpath, name string) (string, error) {
	return query(ctx, n, "Attribute", xpath, Present, func(ctx context.Context, d Driver) (string, error) {
		return d.Attribute(ctx, xpath, name)
	})
}

// ScrollIntoView scrolls until the element is in the viewport.
func (n *Navigator) ScrollIntoView(ctx context.Context, xpath string) error {
	_, err := query(ctx, n, "ScrollIntoView", xpath, Present, func(ctx context.Context, d Driver) (struct{}, error) {
		return struct{}{}, d.ScrollIntoView(ctx, xpath)
	})
	return err
}

// WaitInvisible blocks until no element matching xpath is visible.
func (n *Navigator) WaitInvisible(ctx context.Context, xpath string) error {
	_, err := query(ctx, n, "WaitInvisible", xpath, Hidden, func(context.Context, Driver) (struct{}, error) {
		return struct{}{}, nil
	})
	return err
}

// FindAll returns every element currently matching xpath. It does not wait;
// no match is an empty slice.
func (n *Navigator) FindAll(ctx context.Context, xpath string) ([]Element, error) {
	const op = "FindAll"
	d, err := n.guard(ctx, op)
	if err != nil {
		return nil, err
	}
	elems, err := retry.Value(ctx, n.retry, func(ctx context.Context) ([]Element, error) {
		return d.FindAll(ctx, xpath)
	})
	if err != nil {
		n.logFailure(op, xpath, err)
		return nil, err
	}
	if elems == nil {
		elems = []Element{}
	}
	return elems, nil
}

// SelectedText returns the text of the first selected option of a <select>.
func (n *Navigator) SelectedText(ctx context.Context, xpath string) (string, error) {
	return query(ctx, n, "SelectedText", xpath, Present, func(ctx context.Context, d Driver) (string, error) {
		return d.SelectedText(ctx, xpath)
	})
}

// IsSelected reports whether a checkbox, radio button or option is selected.
func (n *Navigator) IsSelected(ctx context.Context, xpath string) (bool, error) {
	return query(ctx, n, "IsSelected", xpath, Clickable, func(ctx context.Context, d Driver) (bool, error) {
		return d.IsSelected(ctx, xpath)
	})
}

// IsEnabled reports whether the element is enabled.
func (n *Navigator) IsEnabled(ctx context.Context, xpath string) (bool, error) {
	return query(ctx, n, "IsEnabled", xpath, Present, func(ctx context.Context, d Driver) (bool, error) {
		return d.IsEnabled(ctx, xpath)
	})
}

// IsClickable waits up to timeout for the element to become clickable.
// Failures of any kind are logged and reported as false.
func (n *Navigator) IsClickable(ctx context.Context, xpath string, timeout time.Duration) bool {
	return n.check(ctx, "IsClickable", xpath, Clickable, timeout)
}

// Exists waits up to timeout for the element to be present in the DOM.
// Failures of any kind are logged and reported as false.
func (n *Navigator) Exists(ctx context.Context, xpath string, timeout time.Duration) bool {
	return n.check(ctx, "Exists", xpath, Present, timeout)
}

func (n *Navigator) check(ctx context.Context, op, xpath string, cond Condition, timeout time.Duration) bool {
	d, err := n.guard(ctx, op)
	if err != nil {
		return false
	}
	if err := d.Wait(ctx, xpath, cond, timeout); err != nil {
		n.logger.Info("Element did not reach the expected state.",
			zap.String("op", op),
			zap.String("xpath", xpath),
			zap.Stringer("condition", cond),
			zap.Duration("timeout", timeout),
			zap.Error(err))
		return false
	}
	return true
}

// TypedTextEquals compares the current value of an input with want.
func (n *Navigator) TypedTextEquals(ctx context.Context, xpath, want string) (bool, error) {
	got, err := n.Attribute(ctx, xpath, "value")
	if err != nil {
		return false, err
	}
	return got == want, nil
}

// SelectedTextEquals compares the first selected option of a <select> with want.
func (n *Navigator) SelectedTextEquals(ctx context.Context, xpath, want string) (bool, error) {
	got, err := n.SelectedText(ctx, xpath)
	if err != nil {
		return false, err
	}
	return got == want, nil
}
