// Package audit decides whether a statutory tax audit applies to the
// declared business figures.
package audit

import (
	"context"
	"log/slog"

	"github.com/veritax/veritax/internal/forms"
)

// Statutory audit thresholds. Turnover above the business threshold or
// gross receipts above the professional threshold require an audit
// report.
const (
	BusinessTurnoverThreshold     = 10_000_000.0
	ProfessionalReceiptsThreshold = 5_000_000.0
)

// Checker evaluates audit applicability against the statutory
// thresholds.
type Checker struct {
	logger *slog.Logger
}

// NewChecker creates a Checker.
func NewChecker(logger *slog.Logger) *Checker {
	return &Checker{logger: logger.With("system", "audit")}
}

// AuditApplicable reports whether a tax audit applies to the return.
func (c *Checker) AuditApplicable(_ context.Context, form *forms.FormData) (bool, error) {
	applicable := form.Income.BusinessIncome > BusinessTurnoverThreshold ||
		form.Income.ProfessionalIncome > ProfessionalReceiptsThreshold

	if applicable {
		c.logger.Debug(
			"audit applicable",
			"business_income", form.Income.BusinessIncome,
			"professional_income", form.Income.ProfessionalIncome,
		)
	}
	return applicable, nil
}
