package interfaces

import (
	"context"

	"ui_verification/domain/entities"
)

// EvidenceStore keeps run reports and screenshots after a run
type EvidenceStore interface {
	// SaveRun stores the result and, when present, its screenshot.
	// It returns a location the operator can look the evidence up by.
	SaveRun(ctx context.Context, result entities.RunResult) (string, error)
}
