// Package scenario holds the built-in UI checks and reads additional
// scenarios from YAML files.
package scenario

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"ui_verification/domain/entities"
)

const (
	AdminAlerts   = "admin-alerts"
	DashboardGoal = "dashboard-goal"
)

// BuiltinConfig carries the environment-specific parts of the built-in scenarios
type BuiltinConfig struct {
	AdminURL      string
	DashboardURL  string
	LoginCode     string
	ScreenshotDir string
	// SettleDelay is the pause after login before the dashboard is checked
	SettleDelay time.Duration
}

// DefaultBuiltinConfig points at the local dev servers
func DefaultBuiltinConfig() BuiltinConfig {
	return BuiltinConfig{
		AdminURL:      "http://localhost:5174/#admin-dashboard",
		DashboardURL:  "http://localhost:5173/",
		LoginCode:     "999999",
		ScreenshotDir: "verification",
		SettleDelay:   2 * time.Second,
	}
}

// Catalog is a named set of scenarios
type Catalog struct {
	scenarios map[string]entities.Scenario
}

// NewCatalog - creates a catalog holding the built-in scenarios
func NewCatalog(cfg BuiltinConfig) *Catalog {
	c := &Catalog{scenarios: make(map[string]entities.Scenario)}
	c.scenarios[AdminAlerts] = adminAlerts(cfg)
	c.scenarios[DashboardGoal] = dashboardGoal(cfg)
	return c
}

// Add registers scenarios, replacing any with the same name
func (c *Catalog) Add(scenarios ...entities.Scenario) error {
	for _, s := range scenarios {
		if s.Name == "" {
			return fmt.Errorf("%w: scenario has no name", entities.ErrInvalidScenario)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		c.scenarios[s.Name] = s
	}
	return nil
}

// Get returns the scenario with the given name
func (c *Catalog) Get(name string) (entities.Scenario, bool) {
	s, ok := c.scenarios[name]
	return s, ok
}

// Names returns scenario names in sorted order
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.scenarios))
	for name := range c.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves names to scenarios. No names selects everything.
func (c *Catalog) Select(names []string) ([]entities.Scenario, error) {
	if len(names) == 0 {
		names = c.Names()
	}
	selected := make([]entities.Scenario, 0, len(names))
	for _, name := range names {
		s, ok := c.scenarios[name]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q (available: %v)", name, c.Names())
		}
		selected = append(selected, s)
	}
	return selected, nil
}

func adminAlerts(cfg BuiltinConfig) entities.Scenario {
	return entities.Scenario{
		Name:         AdminAlerts,
		TargetURL:    cfg.AdminURL,
		ReadyText:    "Admin Import Dat",
		ReadyTimeout: entities.DefaultReadyTimeout,
		Assertions: []entities.TextAssertion{
			{Description: "AdminImport alert", LocatorText: "Jak import funguje", Required: true},
			{Description: "file name note", LocatorText: "Po obnovení stránky zmizí název souboru", Required: true},
			{Description: "AdminKnowledgeBase alert", LocatorText: "Jak funguje mozek AI asistenta", Required: true},
			{Description: "RAG behavior note", LocatorText: "jediný a výhradní zdroj informací", Required: true},
			{
				Description: "empty knowledge base state",
				LocatorText: "Žádné dokumenty nebyly nahrány. AI aktuálně používá pouze základní předvolené pokyny.",
				Required:    false,
			},
		},
		ScreenshotPath:        filepath.Join(cfg.ScreenshotDir, "admin_alerts.png"),
		FailureScreenshotPath: filepath.Join(cfg.ScreenshotDir, "error.png"),
	}
}

func dashboardGoal(cfg BuiltinConfig) entities.Scenario {
	return entities.Scenario{
		Name:      DashboardGoal,
		TargetURL: cfg.DashboardURL,
		LoginSteps: []entities.LoginStep{
			{Selector: "#code", Value: cfg.LoginCode, Secret: true},
		},
		SubmitSelector: "button[type='submit']",
		ReadyText:      "Ahoj, Aneta",
		ReadyTimeout:   entities.DefaultReadyTimeout,
		SettleDelay:    cfg.SettleDelay,
		Assertions: []entities.TextAssertion{
			{Description: "goal is 9 hours", LocatorText: "/ 9 h", Required: true, Source: entities.SourceContent},
			{Description: "goal is not 15 hours", LocatorText: "/ 15 h", Required: true, Source: entities.SourceContent, Absent: true},
		},
		ScreenshotPath:        filepath.Join(cfg.ScreenshotDir, "dashboard.png"),
		FailureScreenshotPath: filepath.Join(cfg.ScreenshotDir, "dashboard_error.png"),
	}
}
