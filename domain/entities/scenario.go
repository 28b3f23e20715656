package entities

import (
	"fmt"
	"time"
)

// DefaultReadyTimeout is how long a run waits for the readiness anchor
const DefaultReadyTimeout = 10 * time.Second

// AssertionSource selects where a text assertion looks for its fragment
type AssertionSource string

const (
	// SourceVisible checks that an element carrying the text is rendered and visible
	SourceVisible AssertionSource = "visible"
	// SourceContent checks the raw page content for the text
	SourceContent AssertionSource = "content"
)

// LoginStep fills one form field before the login form is submitted
type LoginStep struct {
	Selector string `json:"selector" yaml:"selector"`
	Value    string `json:"value" yaml:"value"`
	Secret   bool   `json:"secret,omitempty" yaml:"secret,omitempty"`
}

// TextAssertion represents one expected text fragment on the page
type TextAssertion struct {
	Description string          `json:"description" yaml:"description"`
	LocatorText string          `json:"locator_text" yaml:"locator_text"`
	Required    bool            `json:"required" yaml:"required"`
	Source      AssertionSource `json:"source,omitempty" yaml:"source,omitempty"`
	// Absent inverts the check: the fragment must not be found
	Absent bool `json:"absent,omitempty" yaml:"absent,omitempty"`
}

// EffectiveSource returns the source, defaulting to SourceVisible
func (a TextAssertion) EffectiveSource() AssertionSource {
	if a.Source == "" {
		return SourceVisible
	}
	return a.Source
}

// Scenario describes one verification run against a web page.
// It is built by the caller and never modified by the runner.
type Scenario struct {
	Name                  string          `json:"name" yaml:"name"`
	TargetURL             string          `json:"target_url" yaml:"target_url"`
	LoginSteps            []LoginStep     `json:"login_steps,omitempty" yaml:"login_steps,omitempty"`
	SubmitSelector        string          `json:"submit_selector,omitempty" yaml:"submit_selector,omitempty"`
	ReadyText             string          `json:"ready_text" yaml:"ready_text"`
	ReadyTimeout          time.Duration   `json:"ready_timeout,omitempty" yaml:"ready_timeout,omitempty"`
	SettleDelay           time.Duration   `json:"settle_delay,omitempty" yaml:"settle_delay,omitempty"`
	Assertions            []TextAssertion `json:"assertions" yaml:"assertions"`
	ScreenshotPath        string          `json:"screenshot_path,omitempty" yaml:"screenshot_path,omitempty"`
	FailureScreenshotPath string          `json:"failure_screenshot_path,omitempty" yaml:"failure_screenshot_path,omitempty"`
}

// EffectiveReadyTimeout returns the readiness timeout, defaulting to DefaultReadyTimeout
func (s Scenario) EffectiveReadyTimeout() time.Duration {
	if s.ReadyTimeout <= 0 {
		return DefaultReadyTimeout
	}
	return s.ReadyTimeout
}

// Validate checks the fields a run cannot start without
func (s Scenario) Validate() error {
	if s.TargetURL == "" {
		return fmt.Errorf("%w: target url is empty", ErrInvalidScenario)
	}
	if s.ReadyText == "" {
		return fmt.Errorf("%w: ready text is empty", ErrInvalidScenario)
	}
	if len(s.LoginSteps) > 0 && s.SubmitSelector == "" {
		return fmt.Errorf("%w: login steps present but submit selector is empty", ErrInvalidScenario)
	}
	for i, step := range s.LoginSteps {
		if step.Selector == "" {
			return fmt.Errorf("%w: login step %d has no selector", ErrInvalidScenario, i)
		}
	}
	for i, a := range s.Assertions {
		if a.LocatorText == "" {
			return fmt.Errorf("%w: assertion %d has no locator text", ErrInvalidScenario, i)
		}
		switch a.EffectiveSource() {
		case SourceVisible, SourceContent:
		default:
			return fmt.Errorf("%w: assertion %d has unknown source %q", ErrInvalidScenario, i, a.Source)
		}
	}
	return nil
}
