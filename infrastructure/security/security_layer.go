package security

import (
	"strings"

	"ui_verification/domain/entities"
	"ui_verification/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const mask = "******"

type SecurityLayer struct {
	logger *logrus.Logger
}

func NewSecurityLayer(logger *logrus.Logger) *SecurityLayer {
	return &SecurityLayer{
		logger: logger,
	}
}

func (s *SecurityLayer) IsSensitive(step entities.LoginStep) bool {
	if step.Secret {
		return true
	}

	lowerSelector := strings.ToLower(step.Selector)

	sensitiveKeywords := []string{
		"password", "passwd", "pass",
		"code", "pin", "otp",
		"token", "secret",
		"heslo", "kód",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lowerSelector, keyword) {
			s.logger.Debugf("Treating %s as sensitive (matched %q)", step.Selector, keyword)
			return true
		}
	}

	return false
}

func (s *SecurityLayer) Display(step entities.LoginStep) string {
	if s.IsSensitive(step) {
		return mask
	}
	return step.Value
}

// Ensure SecurityLayer implements Redactor interface
var _ interfaces.Redactor = (*SecurityLayer)(nil)
