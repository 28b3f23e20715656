package entities

import (
	"fmt"
	"strings"
	"time"
)

// AssertionOutcome records what one assertion observed
type AssertionOutcome struct {
	Assertion TextAssertion `json:"assertion"`
	Visible   bool          `json:"visible"`   // fragment was found
	Satisfied bool          `json:"satisfied"` // no lookup error and Visible != Assertion.Absent
	Error     string        `json:"error,omitempty"`
}

// Failed reports whether the outcome should fail the run
func (o AssertionOutcome) Failed() bool {
	return o.Assertion.Required && !o.Satisfied
}

// RunResult is the outcome of a single scenario run
type RunResult struct {
	RunID          string             `json:"run_id"`
	Scenario       string             `json:"scenario"`
	Passed         bool               `json:"passed"`
	Outcomes       []AssertionOutcome `json:"assertion_outcomes"`
	ScreenshotPath string             `json:"screenshot_path,omitempty"`
	EvidenceError  string             `json:"evidence_error,omitempty"`
	ErrorMessage   string             `json:"error_message,omitempty"`
	StartedAt      time.Time          `json:"started_at"`
	FinishedAt     time.Time          `json:"finished_at"`

	// FailureScreenshotPath is set when an aborted run captured the page
	FailureScreenshotPath string `json:"failure_screenshot_path,omitempty"`

	// Err holds the aborting fault, if any, for errors.Is checks
	Err error `json:"-"`
}

// Aborted reports whether a fault stopped the run
func (r RunResult) Aborted() bool {
	return r.Err != nil
}

// FailedOutcomes returns required outcomes that were not satisfied
func (r RunResult) FailedOutcomes() []AssertionOutcome {
	var failed []AssertionOutcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Duration returns how long the run took
func (r RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failure returns nil for a passing run, the aborting fault for an aborted
// run, and an ErrAssertionFailure naming the missing texts otherwise.
func (r RunResult) Failure() error {
	if r.Err != nil {
		return r.Err
	}
	failed := r.FailedOutcomes()
	if len(failed) == 0 {
		return nil
	}
	texts := make([]string, 0, len(failed))
	for _, o := range failed {
		texts = append(texts, fmt.Sprintf("%q", o.Assertion.LocatorText))
	}
	return fmt.Errorf("%w: %s", ErrAssertionFailure, strings.Join(texts, ", "))
}
