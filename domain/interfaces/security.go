package interfaces

import "ui_verification/domain/entities"

// Redactor decides how login values appear in trace output
type Redactor interface {
	// IsSensitive checks if a login step carries a secret
	IsSensitive(step entities.LoginStep) bool

	// Display returns the value as it may be printed
	Display(step entities.LoginStep) string
}
