// File: internal/browser/errors_test.go
package browser

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"intercepted", ErrClickIntercepted, true},
		{"not interactable", fmt.Errorf("click: %w", ErrNotInteractable), true},
		{"stale", fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrStaleElement)), true},
		{"timeout", ErrElementTimeout, false},
		{"not open", ErrNotOpen, false},
		{"other", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestConditionString(t *testing.T) {
	assert.Equal(t, "present", Present.String())
	assert.Equal(t, "clickable", Clickable.String())
	assert.Equal(t, "hidden", Hidden.String())
	assert.Equal(t, "unknown", Condition(42).String())
}
