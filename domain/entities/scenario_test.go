package entities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScenario_Validate(t *testing.T) {
	valid := Scenario{
		TargetURL:  "http://localhost:5173/",
		ReadyText:  "Ahoj",
		Assertions: []TextAssertion{{LocatorText: "/ 9 h", Source: SourceContent}},
	}

	tests := []struct {
		name    string
		mutate  func(s *Scenario)
		wantErr bool
	}{
		{"valid", func(s *Scenario) {}, false},
		{"missing url", func(s *Scenario) { s.TargetURL = "" }, true},
		{"missing ready text", func(s *Scenario) { s.ReadyText = "" }, true},
		{"login without submit", func(s *Scenario) { s.LoginSteps = []LoginStep{{Selector: "#code", Value: "1"}} }, true},
		{"login with submit", func(s *Scenario) {
			s.LoginSteps = []LoginStep{{Selector: "#code", Value: "1"}}
			s.SubmitSelector = "button"
		}, false},
		{"login step without selector", func(s *Scenario) {
			s.LoginSteps = []LoginStep{{Value: "1"}}
			s.SubmitSelector = "button"
		}, true},
		{"empty locator", func(s *Scenario) { s.Assertions = []TextAssertion{{Description: "x"}} }, true},
		{"unknown source", func(s *Scenario) { s.Assertions = []TextAssertion{{LocatorText: "x", Source: "title"}} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			s.Assertions = append([]TextAssertion(nil), valid.Assertions...)
			tt.mutate(&s)

			err := s.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidScenario)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScenario_EffectiveReadyTimeout(t *testing.T) {
	assert.Equal(t, DefaultReadyTimeout, Scenario{}.EffectiveReadyTimeout())
	assert.Equal(t, 3*DefaultReadyTimeout, Scenario{ReadyTimeout: 3 * DefaultReadyTimeout}.EffectiveReadyTimeout())
}

func TestRunResult_Failure(t *testing.T) {
	passing := RunResult{Passed: true, Outcomes: []AssertionOutcome{
		{Assertion: TextAssertion{LocatorText: "a", Required: true}, Visible: true, Satisfied: true},
		{Assertion: TextAssertion{LocatorText: "b"}, Visible: false, Satisfied: false},
	}}
	assert.NoError(t, passing.Failure())
	assert.Empty(t, passing.FailedOutcomes())

	failing := RunResult{Outcomes: []AssertionOutcome{
		{Assertion: TextAssertion{LocatorText: "/ 15 h", Required: true, Absent: true}, Visible: true, Satisfied: false},
	}}
	err := failing.Failure()
	assert.ErrorIs(t, err, ErrAssertionFailure)
	assert.Contains(t, err.Error(), `"/ 15 h"`)

	abortErr := &StepError{Step: StepWait, Err: ErrTimeout}
	aborted := RunResult{Err: abortErr}
	assert.True(t, aborted.Aborted())
	assert.True(t, errors.Is(aborted.Failure(), ErrTimeout))
	assert.Equal(t, "wait: timed out waiting for selector", abortErr.Error())
}
