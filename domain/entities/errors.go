package entities

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidScenario  = errors.New("invalid scenario")
	ErrLaunch           = errors.New("browser launch failed")
	ErrNavigation       = errors.New("navigation failed")
	ErrLogin            = errors.New("login failed")
	ErrTimeout          = errors.New("timed out waiting for selector")
	ErrAssertionFailure = errors.New("required text not found")
	ErrEvidenceCapture  = errors.New("screenshot capture failed")
)

// Step names a stage of a verification run
type Step string

const (
	StepValidate   Step = "validate"
	StepLaunch     Step = "launch"
	StepNavigate   Step = "navigate"
	StepLogin      Step = "login"
	StepWait       Step = "wait"
	StepAssert     Step = "assert"
	StepScreenshot Step = "screenshot"
	StepClose      Step = "close"
)

// StepError ties a fault to the step that produced it
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
