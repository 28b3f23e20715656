package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ui_verification/domain/entities"
	"ui_verification/domain/interfaces"
)

type reportStore struct {
	dir string
}

// NewReportStore - creates a store writing JSON run reports under dir
func NewReportStore(dir string) (interfaces.EvidenceStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &reportStore{dir: dir}, nil
}

// SaveRun - writes the run result as indented JSON
func (s *reportStore) SaveRun(ctx context.Context, result entities.RunResult) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode run report: %w", err)
	}

	path := filepath.Join(s.dir, reportName(result))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run report: %w", err)
	}
	return path, nil
}

func reportName(result entities.RunResult) string {
	name := result.Scenario
	if name == "" {
		name = "run"
	}
	return fmt.Sprintf("%s-%s.json", name, result.RunID)
}
