package formbuilder

import (
	"github.com/veritax/veritax/internal/compute"
	"github.com/veritax/veritax/internal/forms"
	"github.com/veritax/veritax/internal/validation"
)

// builder produces the gateway payload for one form type and validates
// the result before it may be signed.
type builder interface {
	Build(form *forms.FormData, snapshot *compute.TaxSnapshot, year string) *Payload
	Validate(payload *Payload) *validation.Outcome
}

// validateCommon checks the fields every form requires in the generated
// payload.
func validateCommon(payload *Payload) *validation.Outcome {
	outcome := validation.NewOutcome()

	if payload.Personal.PAN == "" {
		outcome.AddError("personalInfo/pan", "MISSING_PAN", "payload is missing the taxpayer PAN")
	}
	if payload.Personal.Name == "" {
		outcome.AddError("personalInfo/assesseeName", "MISSING_NAME", "payload is missing the taxpayer name")
	}
	if payload.AssessmentYear == "" {
		outcome.AddError("assessmentYear", "MISSING_YEAR", "payload is missing the assessment year")
	}
	if payload.Computation.Version == "" {
		outcome.AddError("taxComputation/computationVersion", "MISSING_COMPUTATION", "payload carries no computation version")
	}
	if payload.Refund.RefundDue > 0 && payload.Refund.AccountNumber == "" {
		outcome.AddError("refund/bankAccountNumber", "MISSING_REFUND_ACCOUNT", "refund is due but no bank account is present")
	}

	return outcome
}

type itr1Builder struct{}

func (itr1Builder) Build(form *forms.FormData, snapshot *compute.TaxSnapshot, year string) *Payload {
	return buildCommon("ITR1-2.0", "ITR-1 SAHAJ", year, form, snapshot)
}

func (itr1Builder) Validate(payload *Payload) *validation.Outcome {
	outcome := validateCommon(payload)
	if payload.Income.BusinessIncome != 0 || payload.Income.CapitalGains != 0 {
		outcome.AddError(
			"incomeDetails", "INVALID_INCOME_HEAD",
			"ITR-1 payload may not carry business income or capital gains",
		)
	}
	return outcome
}

type itr2Builder struct{}

func (itr2Builder) Build(form *forms.FormData, snapshot *compute.TaxSnapshot, year string) *Payload {
	payload := buildCommon("ITR2-2.0", "ITR-2", year, form, snapshot)
	payload.Income.CapitalGains = form.Income.CapitalGains
	return payload
}

func (itr2Builder) Validate(payload *Payload) *validation.Outcome {
	outcome := validateCommon(payload)
	if payload.Income.BusinessIncome != 0 {
		outcome.AddError(
			"incomeDetails/businessIncome", "INVALID_INCOME_HEAD",
			"ITR-2 payload may not carry business income",
		)
	}
	return outcome
}

type itr3Builder struct{}

func (itr3Builder) Build(form *forms.FormData, snapshot *compute.TaxSnapshot, year string) *Payload {
	payload := buildCommon("ITR3-2.0", "ITR-3", year, form, snapshot)
	payload.Income.BusinessIncome = form.Income.BusinessIncome
	payload.Income.ProfessionalIncome = form.Income.ProfessionalIncome
	payload.Income.CapitalGains = form.Income.CapitalGains

	if form.Audit != nil {
		payload.Audit = &AuditSection{
			ReportDate:    form.Audit.ReportDate,
			AuditorName:   form.Audit.AuditorName,
			MembershipNum: form.Audit.AuditorMembershipNum,
		}
	}
	if form.BalanceSheet != nil {
		payload.BalanceSheet = &BalanceSection{
			Assets:      form.BalanceSheet.Assets,
			Liabilities: form.BalanceSheet.Liabilities,
		}
	}
	return payload
}

func (itr3Builder) Validate(payload *Payload) *validation.Outcome {
	return validateCommon(payload)
}

type itr4Builder struct{}

func (itr4Builder) Build(form *forms.FormData, snapshot *compute.TaxSnapshot, year string) *Payload {
	payload := buildCommon("ITR4-2.0", "ITR-4 SUGAM", year, form, snapshot)
	payload.Income.BusinessIncome = form.Income.BusinessIncome
	payload.Income.ProfessionalIncome = form.Income.ProfessionalIncome
	return payload
}

func (itr4Builder) Validate(payload *Payload) *validation.Outcome {
	outcome := validateCommon(payload)
	if payload.Income.BusinessIncome > validation.PresumptiveBusinessCap {
		outcome.AddError(
			"incomeDetails/businessIncome", "PRESUMPTIVE_BUSINESS_CAP",
			"ITR-4 payload exceeds the presumptive business income cap",
		)
	}
	if payload.Income.ProfessionalIncome > validation.PresumptiveProfessionalCap {
		outcome.AddError(
			"incomeDetails/professionalIncome", "PRESUMPTIVE_PROFESSIONAL_CAP",
			"ITR-4 payload exceeds the presumptive professional income cap",
		)
	}
	return outcome
}
