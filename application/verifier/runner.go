package verifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"ui_verification/domain/entities"
	"ui_verification/domain/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Runner executes scenarios against browsers acquired from a launcher.
// Each run gets its own driver, closed before Run returns.
type Runner struct {
	launcher interfaces.DriverLauncher
	redactor interfaces.Redactor
	logger   *logrus.Logger
	trace    io.Writer
	now      func() time.Time
}

// NewRunner - creates new verification runner
func NewRunner(launcher interfaces.DriverLauncher, redactor interfaces.Redactor, logger *logrus.Logger, trace io.Writer) *Runner {
	if trace == nil {
		trace = io.Discard
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Runner{
		launcher: launcher,
		redactor: redactor,
		logger:   logger,
		trace:    trace,
		now:      time.Now,
	}
}

// Run executes one scenario and reports everything it saw.
// Faults never escape: they are recorded on the returned result.
func (r *Runner) Run(ctx context.Context, scenario entities.Scenario) (result entities.RunResult) {
	result = entities.RunResult{
		RunID:     uuid.NewString(),
		Scenario:  scenario.Name,
		StartedAt: r.now(),
	}
	step := entities.StepValidate
	defer func() {
		if p := recover(); p != nil {
			r.abort(&result, &entities.StepError{Step: step, Err: fmt.Errorf("driver panic: %v", p)})
		}
		result.FinishedAt = r.now()
	}()

	log := r.logger.WithFields(logrus.Fields{"scenario": scenario.Name, "run_id": result.RunID})

	if err := scenario.Validate(); err != nil {
		r.abort(&result, &entities.StepError{Step: entities.StepValidate, Err: err})
		return result
	}

	step = entities.StepLaunch
	driver, err := r.launcher.Launch(ctx)
	if err != nil {
		r.abort(&result, stepError(entities.StepLaunch, entities.ErrLaunch, err))
		return result
	}
	defer func() {
		current := step
		step = entities.StepClose
		if err := driver.Close(); err != nil {
			log.Warnf("Failed to close browser: %v", err)
		}
		step = current
	}()

	if err := r.prepare(ctx, driver, scenario, &step); err != nil {
		r.abort(&result, err)
		r.captureFailure(ctx, driver, scenario, &result)
		return result
	}

	step = entities.StepAssert
	r.evaluate(ctx, driver, scenario.Assertions, &result)

	step = entities.StepScreenshot
	r.captureEvidence(ctx, driver, scenario, &result)

	result.Passed = len(result.FailedOutcomes()) == 0
	if result.Passed {
		r.tracef("SUCCESS: %s passed (%d assertions)\n", scenario.Name, len(result.Outcomes))
	} else {
		r.tracef("FAILURE: %s failed %d of %d assertions\n", scenario.Name, len(result.FailedOutcomes()), len(result.Outcomes))
	}
	log.WithField("passed", result.Passed).Debug("Run finished")
	return result
}

// prepare covers navigation, login and the readiness wait. Any error it
// returns aborts the run. stage tracks the step in progress.
func (r *Runner) prepare(ctx context.Context, driver interfaces.Driver, scenario entities.Scenario, stage *entities.Step) error {
	*stage = entities.StepNavigate
	r.tracef("Navigating to %s...\n", scenario.TargetURL)
	if err := driver.Navigate(ctx, scenario.TargetURL); err != nil {
		return stepError(entities.StepNavigate, entities.ErrNavigation, err)
	}

	if len(scenario.LoginSteps) > 0 {
		*stage = entities.StepLogin
		r.tracef("Logging in...\n")
		for _, step := range scenario.LoginSteps {
			r.tracef("  fill %s = %s\n", step.Selector, r.display(step))
			if err := driver.Fill(ctx, step.Selector, step.Value); err != nil {
				return stepError(entities.StepLogin, entities.ErrLogin, fmt.Errorf("fill %s: %w", step.Selector, err))
			}
		}
		if err := driver.Click(ctx, scenario.SubmitSelector); err != nil {
			return stepError(entities.StepLogin, entities.ErrLogin, fmt.Errorf("click %s: %w", scenario.SubmitSelector, err))
		}
	}

	*stage = entities.StepWait
	r.tracef("Waiting for %q...\n", scenario.ReadyText)
	if err := driver.WaitForSelector(ctx, scenario.ReadyText, scenario.EffectiveReadyTimeout()); err != nil {
		if errors.Is(err, entities.ErrTimeout) {
			return stepError(entities.StepWait, entities.ErrTimeout, err)
		}
		return stepError(entities.StepWait, entities.ErrNavigation, err)
	}

	if scenario.SettleDelay > 0 {
		select {
		case <-ctx.Done():
			return &entities.StepError{Step: entities.StepWait, Err: fmt.Errorf("settle delay: %w", ctx.Err())}
		case <-time.After(scenario.SettleDelay):
		}
	}
	return nil
}

// evaluate runs every assertion in order, appending each outcome to the
// result as soon as it is known. A lookup error leaves the outcome
// unsatisfied whatever the assertion expected, and does not stop the
// remaining checks.
func (r *Runner) evaluate(ctx context.Context, driver interfaces.Driver, assertions []entities.TextAssertion, result *entities.RunResult) {
	result.Outcomes = make([]entities.AssertionOutcome, 0, len(assertions))

	var (
		content    string
		contentErr error
		fetched    bool
	)

	for _, a := range assertions {
		outcome := entities.AssertionOutcome{Assertion: a}

		switch a.EffectiveSource() {
		case entities.SourceContent:
			if !fetched {
				content, contentErr = driver.GetContent(ctx)
				fetched = true
			}
			if contentErr != nil {
				outcome.Error = contentErr.Error()
			} else {
				outcome.Visible = strings.Contains(content, a.LocatorText)
			}
		default:
			visible, err := driver.IsVisible(ctx, a.LocatorText)
			if err != nil {
				outcome.Error = err.Error()
			} else {
				outcome.Visible = visible
			}
		}
		outcome.Satisfied = outcome.Error == "" && outcome.Visible != a.Absent

		r.traceOutcome(outcome)
		result.Outcomes = append(result.Outcomes, outcome)
	}
}

func (r *Runner) captureEvidence(ctx context.Context, driver interfaces.Driver, scenario entities.Scenario, result *entities.RunResult) {
	if scenario.ScreenshotPath == "" {
		return
	}

	r.tracef("Taking screenshot...\n")
	if err := driver.Screenshot(ctx, scenario.ScreenshotPath, true); err != nil {
		result.EvidenceError = stepError(entities.StepScreenshot, entities.ErrEvidenceCapture, err).Error()
		r.tracef("Screenshot failed: %v\n", err)
		return
	}
	result.ScreenshotPath = scenario.ScreenshotPath
	r.tracef("Screenshot saved to %s\n", scenario.ScreenshotPath)
}

// captureFailure grabs what the page looked like when the run aborted
func (r *Runner) captureFailure(ctx context.Context, driver interfaces.Driver, scenario entities.Scenario, result *entities.RunResult) {
	if scenario.FailureScreenshotPath == "" {
		return
	}
	if err := driver.Screenshot(ctx, scenario.FailureScreenshotPath, false); err != nil {
		r.logger.Warnf("Failed to capture failure screenshot: %v", err)
		return
	}
	result.FailureScreenshotPath = scenario.FailureScreenshotPath
	r.tracef("Failure screenshot saved to %s\n", scenario.FailureScreenshotPath)
}

func (r *Runner) abort(result *entities.RunResult, err error) {
	result.Passed = false
	result.Err = err
	result.ErrorMessage = err.Error()
	r.tracef("Test failed: %v\n", err)
	r.logger.WithField("scenario", result.Scenario).Errorf("Run aborted: %v", err)
}

func (r *Runner) traceOutcome(o entities.AssertionOutcome) {
	status := "OK"
	switch {
	case o.Failed():
		status = "FAIL"
	case !o.Satisfied:
		status = "INFO"
	}

	expect := "visible"
	if o.Assertion.EffectiveSource() == entities.SourceContent {
		expect = "in content"
	}
	if o.Assertion.Absent {
		expect = "not " + expect
	}

	label := o.Assertion.Description
	if label == "" {
		label = o.Assertion.LocatorText
	}
	r.tracef("  [%s] %s (%q %s)\n", status, label, o.Assertion.LocatorText, expect)
	if o.Error != "" {
		r.tracef("         error: %s\n", o.Error)
	}
}

func (r *Runner) display(step entities.LoginStep) string {
	if r.redactor == nil {
		return step.Value
	}
	return r.redactor.Display(step)
}

func (r *Runner) tracef(format string, args ...interface{}) {
	fmt.Fprintf(r.trace, format, args...)
}

// stepError wraps err with the step sentinel unless it already carries it
func stepError(step entities.Step, sentinel, err error) *entities.StepError {
	if errors.Is(err, sentinel) {
		return &entities.StepError{Step: step, Err: err}
	}
	return &entities.StepError{Step: step, Err: fmt.Errorf("%w: %w", sentinel, err)}
}
