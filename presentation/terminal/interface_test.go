package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"ui_verification/application/verifier/verifiertest"
	"ui_verification/domain/entities"
	"ui_verification/domain/interfaces"
	"ui_verification/infrastructure/config"
	"ui_verification/infrastructure/scenario"
	"ui_verification/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) SaveRun(ctx context.Context, result entities.RunResult) (string, error) {
	return "", errors.New("bucket unreachable")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	builtins := scenario.DefaultBuiltinConfig()
	builtins.ScreenshotDir = filepath.Join(dir, "shots")
	return &config.Config{
		LogLevel:  "info",
		ReportDir: filepath.Join(dir, "reports"),
		Targets: config.TargetConfig{
			AdminURL:      builtins.AdminURL,
			DashboardURL:  builtins.DashboardURL,
			LoginCode:     builtins.LoginCode,
			ScreenshotDir: builtins.ScreenshotDir,
		},
	}
}

func readReport(t *testing.T, path string) entities.RunResult {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var result entities.RunResult
	require.NoError(t, json.Unmarshal(data, &result))
	return result
}

func newTestTerminal(t *testing.T, cfg *config.Config, driver *verifiertest.FakeDriver, extra ...interfaces.EvidenceStore) (*TerminalInterface, *bytes.Buffer) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	reports, err := storage.NewReportStore(cfg.ReportDir)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	term, err := newTerminal(cfg, logger, out, &verifiertest.Launcher{Driver: driver}, append([]interfaces.EvidenceStore{reports}, extra...))
	require.NoError(t, err)
	return term, out
}

func TestRun_AdminPasses(t *testing.T) {
	cfg := testConfig(t)
	driver := &verifiertest.FakeDriver{
		VisibleTexts: []string{
			"Admin Import Dat",
			"Jak import funguje",
			"Po obnovení stránky zmizí název souboru",
			"Jak funguje mozek AI asistenta",
			"jediný a výhradní zdroj informací",
		},
		WriteScreenshots: true,
	}
	term, out := newTestTerminal(t, cfg, driver)

	results, err := term.Run(context.Background(), []string{scenario.AdminAlerts})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Passed)

	assert.Contains(t, out.String(), "=== admin-alerts ===")
	assert.Contains(t, out.String(), "PASS admin-alerts")
	assert.Contains(t, out.String(), "1 passed, 0 failed")

	reports, err := filepath.Glob(filepath.Join(cfg.ReportDir, "admin-alerts-*.json"))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, results[0].RunID, readReport(t, reports[0]).RunID)

	_, err = os.Stat(results[0].ScreenshotPath)
	assert.NoError(t, err)
}

func TestRun_FailureSetsExitError(t *testing.T) {
	cfg := testConfig(t)
	driver := &verifiertest.FakeDriver{
		VisibleTexts: []string{"Ahoj, Aneta"},
		Content:      "<p>0 / 15 h</p>",
	}
	term, out := newTestTerminal(t, cfg, driver)

	results, err := term.Run(context.Background(), []string{scenario.DashboardGoal})
	assert.ErrorIs(t, err, ErrVerificationFailed)
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed)
	assert.Contains(t, out.String(), "FAIL dashboard-goal")
	assert.Contains(t, out.String(), "required text not found")
	assert.NotContains(t, out.String(), "999999")
}

func TestRun_NoFailKeepsZeroExit(t *testing.T) {
	cfg := testConfig(t)
	cfg.NoFail = true
	driver := &verifiertest.FakeDriver{WaitErr: entities.ErrTimeout}
	term, out := newTestTerminal(t, cfg, driver)

	results, err := term.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.Passed)
		assert.Empty(t, r.Outcomes)
	}
	assert.Contains(t, out.String(), "ABORT admin-alerts")
	assert.Contains(t, out.String(), "ABORT dashboard-goal")
	assert.Contains(t, out.String(), "0 passed, 2 failed")
}

// interruptingDriver cancels the run context while navigating, like Ctrl-C
type interruptingDriver struct {
	*verifiertest.FakeDriver
	cancel context.CancelFunc
}

func (d interruptingDriver) Navigate(ctx context.Context, url string) error {
	d.cancel()
	return ctx.Err()
}

type interruptingLauncher struct {
	driver interruptingDriver
}

func (l interruptingLauncher) Launch(ctx context.Context) (interfaces.Driver, error) {
	return l.driver, nil
}

func TestRun_InterruptedRunIsStillReported(t *testing.T) {
	cfg := testConfig(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	reports, err := storage.NewReportStore(cfg.ReportDir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	launcher := interruptingLauncher{driver: interruptingDriver{FakeDriver: &verifiertest.FakeDriver{}, cancel: cancel}}
	term, err := newTerminal(cfg, logger, &bytes.Buffer{}, launcher, []interfaces.EvidenceStore{reports})
	require.NoError(t, err)

	results, err := term.Run(ctx, []string{scenario.AdminAlerts, scenario.DashboardGoal})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)

	saved, err := filepath.Glob(filepath.Join(cfg.ReportDir, "admin-alerts-*.json"))
	require.NoError(t, err)
	require.Len(t, saved, 1)
	report := readReport(t, saved[0])
	assert.Equal(t, results[0].RunID, report.RunID)
	assert.False(t, report.Passed)
	assert.Contains(t, report.ErrorMessage, "context canceled")
}

func TestRun_ArchiveFailureDoesNotChangeOutcome(t *testing.T) {
	cfg := testConfig(t)
	driver := &verifiertest.FakeDriver{VisibleTexts: []string{"Ahoj, Aneta"}, Content: "/ 9 h"}
	term, _ := newTestTerminal(t, cfg, driver, failingStore{})

	results, err := term.Run(context.Background(), []string{scenario.DashboardGoal})
	require.NoError(t, err)
	assert.True(t, results[0].Passed)
}

func TestRun_UnknownScenario(t *testing.T) {
	term, _ := newTestTerminal(t, testConfig(t), &verifiertest.FakeDriver{})

	_, err := term.Run(context.Background(), []string{"checkout"})
	assert.ErrorContains(t, err, "unknown scenario")
}

func TestRun_ScenarioFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.ScenarioFile = filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(cfg.ScenarioFile, []byte(`scenarios:
  - name: settings
    target_url: http://localhost:5173/#settings
    ready_text: Nastavení
    assertions:
      - locator_text: Jazyk
        required: true
`), 0644))

	driver := &verifiertest.FakeDriver{VisibleTexts: []string{"Nastavení", "Jazyk"}}
	term, out := newTestTerminal(t, cfg, driver)

	term.List()
	assert.Contains(t, out.String(), "settings")

	results, err := term.Run(context.Background(), []string{"settings"})
	require.NoError(t, err)
	assert.True(t, results[0].Passed)
}

func TestShow_MasksSecrets(t *testing.T) {
	term, out := newTestTerminal(t, testConfig(t), &verifiertest.FakeDriver{})

	require.NoError(t, term.Show(scenario.DashboardGoal))
	assert.Contains(t, out.String(), "name: dashboard-goal")
	assert.Contains(t, out.String(), "******")
	assert.NotContains(t, out.String(), "999999")

	assert.Error(t, term.Show("missing"))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	_, err = NewLogger("chatty", io.Discard)
	assert.Error(t, err)
}
