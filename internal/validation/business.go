package validation

import (
	"context"
	"fmt"
	"math"

	"github.com/veritax/veritax/internal/forms"
)

// Presumptive income caps. A return over either cap must move to the
// non-presumptive form (ITR3).
const (
	PresumptiveBusinessCap     = 2_000_000.0
	PresumptiveProfessionalCap = 500_000.0
)

// balanceTolerance is the maximum permitted difference between declared
// assets and liabilities.
const balanceTolerance = 0.01

// ValidateBusinessRules checks the statutory constraints for the form
// type. Every violation accumulates into the outcome; nothing
// short-circuits, so the caller sees all findings at once.
func (v *Validator) ValidateBusinessRules(ctx context.Context, form *forms.FormData, formType forms.FormType) (*Outcome, error) {
	outcome := NewOutcome()

	if formType.HasAuditSection() {
		if err := v.checkAudit(ctx, form, outcome); err != nil {
			return nil, err
		}
		checkBalanceSheet(form, outcome)
	}

	if formType.Presumptive() {
		checkPresumptiveCaps(form, outcome)
	}

	return outcome, nil
}

func (v *Validator) checkAudit(ctx context.Context, form *forms.FormData, outcome *Outcome) error {
	applicable, err := v.audit.AuditApplicable(ctx, form)
	if err != nil {
		return fmt.Errorf("audit applicability check: %w", err)
	}
	if !applicable {
		return nil
	}

	if form.Audit == nil || !form.Audit.Complete() {
		outcome.AddError(
			"/audit", "AUDIT_REPORT_INCOMPLETE",
			"tax audit applies but the audit report section is incomplete",
		)
	}
	return nil
}

func checkBalanceSheet(form *forms.FormData, outcome *Outcome) {
	if form.BalanceSheet == nil {
		return
	}

	diff := math.Abs(form.BalanceSheet.Assets - form.BalanceSheet.Liabilities)
	if diff > balanceTolerance {
		outcome.AddError(
			"/balance_sheet", "BALANCE_SHEET_MISMATCH",
			fmt.Sprintf("assets and liabilities differ by %.2f", diff),
		)
	}
}

func checkPresumptiveCaps(form *forms.FormData, outcome *Outcome) {
	if form.Income.BusinessIncome > PresumptiveBusinessCap {
		outcome.AddError(
			"/income/business_income", "PRESUMPTIVE_BUSINESS_CAP",
			fmt.Sprintf(
				"business income %.0f exceeds the presumptive cap %.0f; file ITR3 instead",
				form.Income.BusinessIncome, PresumptiveBusinessCap,
			),
		)
	}
	if form.Income.ProfessionalIncome > PresumptiveProfessionalCap {
		outcome.AddError(
			"/income/professional_income", "PRESUMPTIVE_PROFESSIONAL_CAP",
			fmt.Sprintf(
				"professional income %.0f exceeds the presumptive cap %.0f; file ITR3 instead",
				form.Income.ProfessionalIncome, PresumptiveProfessionalCap,
			),
		)
	}
}
