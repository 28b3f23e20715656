package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"ui_verification/application/verifier"
	"ui_verification/domain/entities"
	"ui_verification/domain/interfaces"
	"ui_verification/infrastructure/browser"
	"ui_verification/infrastructure/config"
	"ui_verification/infrastructure/scenario"
	"ui_verification/infrastructure/security"
	"ui_verification/infrastructure/storage"

	"github.com/sirupsen/logrus"
)

// ErrVerificationFailed is returned when at least one scenario did not pass
var ErrVerificationFailed = errors.New("verification failed")

type TerminalInterface struct {
	cfg     *config.Config
	logger  *logrus.Logger
	out     io.Writer
	catalog *scenario.Catalog
	runner  *verifier.Runner
	stores  []interfaces.EvidenceStore
}

// NewLogger - creates the logger shared by all components
func NewLogger(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger, nil
}

// NewTerminalInterface wires the playwright launcher, the evidence stores
// and the scenario catalog from configuration.
func NewTerminalInterface(ctx context.Context, cfg *config.Config, logger *logrus.Logger, out io.Writer) (*TerminalInterface, error) {
	launcher := browser.NewLauncher(cfg.BrowserOptions(), logger)

	reports, err := storage.NewReportStore(cfg.ReportDir)
	if err != nil {
		return nil, err
	}
	stores := []interfaces.EvidenceStore{reports}

	if cfg.ArchiveEnabled() {
		archive, err := storage.NewS3Archive(ctx, cfg.S3Archive())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize evidence archive: %w", err)
		}
		stores = append(stores, archive)
	}

	return newTerminal(cfg, logger, out, launcher, stores)
}

func newTerminal(cfg *config.Config, logger *logrus.Logger, out io.Writer, launcher interfaces.DriverLauncher, stores []interfaces.EvidenceStore) (*TerminalInterface, error) {
	catalog := scenario.NewCatalog(cfg.Builtins())
	if cfg.ScenarioFile != "" {
		scenarios, err := scenario.LoadFile(cfg.ScenarioFile)
		if err != nil {
			return nil, err
		}
		if err := catalog.Add(scenarios...); err != nil {
			return nil, err
		}
		logger.Infof("Loaded %d scenarios from %s", len(scenarios), cfg.ScenarioFile)
	}

	runner := verifier.NewRunner(launcher, security.NewSecurityLayer(logger), logger, out)

	return &TerminalInterface{
		cfg:     cfg,
		logger:  logger,
		out:     out,
		catalog: catalog,
		runner:  runner,
		stores:  stores,
	}, nil
}

// Run executes the named scenarios one after another. No names runs all.
// The returned error is ErrVerificationFailed when a run did not pass,
// unless the configuration asks to never fail.
func (t *TerminalInterface) Run(ctx context.Context, names []string) ([]entities.RunResult, error) {
	scenarios, err := t.catalog.Select(names)
	if err != nil {
		return nil, err
	}

	results := make([]entities.RunResult, 0, len(scenarios))
	for _, s := range scenarios {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintf(t.out, "\n=== %s ===\n", s.Name)
		result := t.runner.Run(ctx, s)
		t.archive(ctx, result)
		results = append(results, result)
	}

	failed := t.printSummary(results)
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("verification interrupted: %w", err)
	}
	if failed > 0 && !t.cfg.NoFail {
		return results, fmt.Errorf("%w: %d of %d scenarios", ErrVerificationFailed, failed, len(results))
	}
	return results, nil
}

// archive stores evidence; failures here never change the run outcome.
// Interrupted runs are archived too.
func (t *TerminalInterface) archive(ctx context.Context, result entities.RunResult) {
	ctx = context.WithoutCancel(ctx)
	for _, store := range t.stores {
		location, err := store.SaveRun(ctx, result)
		if err != nil {
			t.logger.Warnf("Failed to archive run %s: %v", result.RunID, err)
			continue
		}
		t.logger.Infof("Run %s archived to %s", result.RunID, location)
	}
}

func (t *TerminalInterface) printSummary(results []entities.RunResult) int {
	failed := 0

	fmt.Fprintf(t.out, "\n=== Verification Summary ===\n")
	for _, r := range results {
		status := "PASS"
		switch {
		case r.Aborted():
			status = "ABORT"
			failed++
		case !r.Passed:
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(t.out, "%s %s (%s)\n", status, r.Scenario, r.Duration().Round(time.Millisecond))
		if err := r.Failure(); err != nil {
			fmt.Fprintf(t.out, "     %v\n", err)
		}
		if r.EvidenceError != "" {
			fmt.Fprintf(t.out, "     evidence: %s\n", r.EvidenceError)
		}
	}
	fmt.Fprintf(t.out, "%d passed, %d failed\n", len(results)-failed, failed)
	return failed
}

// List prints the available scenarios
func (t *TerminalInterface) List() {
	for _, name := range t.catalog.Names() {
		s, _ := t.catalog.Get(name)
		fmt.Fprintf(t.out, "%-20s %s (%d assertions)\n", name, s.TargetURL, len(s.Assertions))
	}
}

// Show prints one scenario as YAML with secret login values masked
func (t *TerminalInterface) Show(name string) error {
	s, ok := t.catalog.Get(name)
	if !ok {
		return fmt.Errorf("unknown scenario %q (available: %s)", name, strings.Join(t.catalog.Names(), ", "))
	}

	redactor := security.NewSecurityLayer(t.logger)
	steps := make([]entities.LoginStep, len(s.LoginSteps))
	for i, step := range s.LoginSteps {
		step.Value = redactor.Display(step)
		steps[i] = step
	}
	s.LoginSteps = steps

	return scenario.Encode(t.out, s)
}
