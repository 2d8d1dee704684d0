// File: internal/recipe/recipe.go

// Package recipe runs YAML automation scripts against a browser session.
package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v3"
)

// Step actions.
const (
	ActionOpen           = "open"
	ActionNewTab         = "new_tab"
	ActionSwitchTab      = "switch_tab"
	ActionCloseTab       = "close_tab"
	ActionReload         = "reload"
	ActionClick          = "click"
	ActionType           = "type"
	ActionClear          = "clear"
	ActionHover          = "hover"
	ActionSelectText     = "select_text"
	ActionSelectValue    = "select_value"
	ActionScroll         = "scroll"
	ActionWaitInvisible  = "wait_invisible"
	ActionEnterFrame     = "enter_frame"
	ActionExitFrame      = "exit_frame"
	ActionScreenshot     = "screenshot"
	ActionSaveCookies    = "save_cookies"
	ActionLoadCookies    = "load_cookies"
	ActionSleep          = "sleep"
	ActionAssertText     = "assert_text"
	ActionAssertValue    = "assert_value"
	ActionAssertSelected = "assert_selected"
	ActionAssertExists   = "assert_exists"
)

// Recipe is a named, ordered list of steps.
type Recipe struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// Step is one scripted browser action. Which fields apply depends on Action.
type Step struct {
	Action string `yaml:"action"`
	URL    string `yaml:"url,omitempty"`
	XPath  string `yaml:"xpath,omitempty"`
	// Text is the input for type and select_text and the expected value for assertions.
	Text     string        `yaml:"text,omitempty"`
	Value    string        `yaml:"value,omitempty"`
	Index    int           `yaml:"index,omitempty"`
	Name     string        `yaml:"name,omitempty"`
	Path     string        `yaml:"path,omitempty"`
	Duration time.Duration `yaml:"duration,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// requirement lists the fields an action cannot do without.
type requirement struct {
	xpath, text, value, duration bool
}

var actions = map[string]requirement{
	ActionOpen:           {},
	ActionNewTab:         {},
	ActionSwitchTab:      {},
	ActionCloseTab:       {},
	ActionReload:         {},
	ActionClick:          {xpath: true},
	ActionType:           {xpath: true, text: true},
	ActionClear:          {xpath: true},
	ActionHover:          {xpath: true},
	ActionSelectText:     {xpath: true, text: true},
	ActionSelectValue:    {xpath: true, value: true},
	ActionScroll:         {xpath: true},
	ActionWaitInvisible:  {xpath: true},
	ActionEnterFrame:     {xpath: true},
	ActionExitFrame:      {},
	ActionScreenshot:     {},
	ActionSaveCookies:    {},
	ActionLoadCookies:    {},
	ActionSleep:          {duration: true},
	ActionAssertText:     {xpath: true},
	ActionAssertValue:    {xpath: true},
	ActionAssertSelected: {xpath: true, text: true},
	ActionAssertExists:   {xpath: true},
}

// Validate checks that every step names a known action and carries its
// required fields.
func (s Step) Validate() error {
	req, ok := actions[s.Action]
	if !ok {
		if s.Action == "" {
			return errors.New("an action is required for each step")
		}
		return fmt.Errorf("unknown action %q", s.Action)
	}
	switch {
	case req.xpath && s.XPath == "":
		return fmt.Errorf("%s: xpath is required", s.Action)
	case req.text && s.Text == "":
		return fmt.Errorf("%s: text is required", s.Action)
	case req.value && s.Value == "":
		return fmt.Errorf("%s: value is required", s.Action)
	case req.duration && s.Duration <= 0:
		return fmt.Errorf("%s: a positive duration is required", s.Action)
	case s.Index < 0:
		return fmt.Errorf("%s: index must not be negative", s.Action)
	case s.Timeout < 0:
		return fmt.Errorf("%s: timeout must not be negative", s.Action)
	}
	return nil
}

// Parse decodes and validates a recipe. Unknown keys are rejected so typos
// do not silently drop a field.
func Parse(data []byte) (*Recipe, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var r Recipe
	if err := dec.Decode(&r); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("recipe is empty")
		}
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	if len(r.Steps) == 0 {
		return nil, fmt.Errorf("recipe %q: no steps defined", r.Name)
	}
	for i, step := range r.Steps {
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("recipe %q: step %d: %w", r.Name, i+1, err)
		}
	}
	return &r, nil
}

// Load reads and parses the recipe file at path.
func Load(fs afero.Fs, path string) (*Recipe, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}
