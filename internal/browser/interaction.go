// File: internal/browser/interaction.go
package browser

import (
	"context"

	"github.com/xkilldash9x/automaweb/internal/retry"
	"go.uber.org/zap"
)

// act is the shared path for element actions:
//  1. guard against a missing session
//  2. pause for the configured action delay
//  3. wait for the element to become clickable
//  4. perform the action
//
// Steps 2 to 4 are retried together when they fail with a transient error.
func (n *Navigator) act(ctx context.Context, op, xpath string, fn func(context.Context, Driver) error) error {
	d, err := n.guard(ctx, op)
	if err != nil {
		return err
	}
	err = n.retry.Do(ctx, func(ctx context.Context) error {
		if err := n.stun(ctx); err != nil {
			return err
		}
		if err := d.Wait(ctx, xpath, Clickable, n.waitTimeout()); err != nil {
			return err
		}
		return fn(ctx, d)
	})
	if err != nil {
		n.logFailure(op, xpath, err)
		return err
	}
	n.logger.Debug("Action performed.", zap.String("op", op), zap.String("xpath", xpath))
	return nil
}

// query is the shared path for reads: guard, wait for cond, read. Reads are
// retried on transient errors but never delayed.
func query[T any](ctx context.Context, n *Navigator, op, xpath string, cond Condition, fn func(context.Context, Driver) (T, error)) (T, error) {
	var zero T
	d, err := n.guard(ctx, op)
	if err != nil {
		return zero, err
	}
	result, err := retry.Value(ctx, n.retry, func(ctx context.Context) (T, error) {
		if err := d.Wait(ctx, xpath, cond, n.waitTimeout()); err != nil {
			return zero, err
		}
		return fn(ctx, d)
	})
	if err != nil {
		n.logFailure(op, xpath, err)
		return zero, err
	}
	return result, nil
}

// Click clicks the element at xpath once it is clickable.
func (n *Navigator) Click(ctx context.Context, xpath string) error {
	return n.act(ctx, "Click", xpath, func(ctx context.Context, d Driver) error {
		return d.Click(ctx, xpath)
	})
}

// Type sends text to the element at xpath as key presses, appending to any
// existing value.
func (n *Navigator) Type(ctx context.Context, xpath, text string) error {
	return n.act(ctx, "Type", xpath, func(ctx context.Context, d Driver) error {
		return d.Type(ctx, xpath, text)
	})
}

// Clear empties an input or textarea.
func (n *Navigator) Clear(ctx context.Context, xpath string) error {
	return n.act(ctx, "Clear", xpath, func(ctx context.Context, d Driver) error {
		return d.Clear(ctx, xpath)
	})
}

// Hover moves the pointer over the element.
func (n *Navigator) Hover(ctx context.Context, xpath string) error {
	return n.act(ctx, "Hover", xpath, func(ctx context.Context, d Driver) error {
		return d.Hover(ctx, xpath)
	})
}

// SelectByText picks the option of a <select> whose visible text equals text.
func (n *Navigator) SelectByText(ctx context.Context, xpath, text string) error {
	return n.act(ctx, "SelectByText", xpath, func(ctx context.Context, d Driver) error {
		return d.SelectByText(ctx, xpath, text)
	})
}

// SelectByValue picks the option of a <select> whose value attribute equals value.
func (n *Navigator) SelectByValue(ctx context.Context, xpath, value string) error {
	return n.act(ctx, "SelectByValue", xpath, func(ctx context.Context, d Driver) error {
		return d.SelectByValue(ctx, xpath, value)
	})
}
