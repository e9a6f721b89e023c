package validation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/veritax/veritax/internal/forms"
)

// AuditChecker decides whether a tax audit applies to the declared
// business figures. It is an external collaborator: the statutory
// thresholds live outside this service.
type AuditChecker interface {
	AuditApplicable(ctx context.Context, form *forms.FormData) (bool, error)
}

// Validator runs schema validation and business rules over form data.
type Validator struct {
	schemas map[forms.FormType]*jsonschema.Schema
	audit   AuditChecker
	logger  *slog.Logger
}

// New creates a Validator with compiled schemas for every supported form.
func New(audit AuditChecker, logger *slog.Logger) (*Validator, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, fmt.Errorf("compile form schemas: %w", err)
	}
	return &Validator{
		schemas: schemas,
		audit:   audit,
		logger:  logger.With("system", "validation"),
	}, nil
}

// ValidatePayload runs generic schema validation and form-type-specific
// checks, merging errors and warnings into one outcome.
func (v *Validator) ValidatePayload(form *forms.FormData, formType forms.FormType) (*Outcome, error) {
	schema, ok := v.schemas[formType]
	if !ok {
		return nil, fmt.Errorf("no schema for form type %s", formType)
	}

	outcome, err := validateSchema(schema, form)
	if err != nil {
		return nil, err
	}

	outcome.Merge(v.validateFormSpecific(form, formType))

	v.logger.Debug(
		"payload validated",
		"form_type", formType,
		"valid", outcome.Valid,
		"errors", len(outcome.Errors),
		"warnings", len(outcome.Warnings),
	)
	return outcome, nil
}

// validateFormSpecific applies per-form checks that the generic schema
// cannot express.
func (v *Validator) validateFormSpecific(form *forms.FormData, formType forms.FormType) *Outcome {
	outcome := NewOutcome()

	if form.FormType != formType {
		outcome.AddError(
			"/form_type", "FORM_TYPE_MISMATCH",
			fmt.Sprintf("draft declares %s but filing targets %s", form.FormType, formType),
		)
	}

	switch formType {
	case forms.ITR1:
		if form.Income.Salary == 0 && form.Income.InterestIncome == 0 {
			outcome.AddWarning(
				"/income", "NO_INCOME_DECLARED",
				"no salary or interest income declared",
			)
		}
	case forms.ITR2:
		if form.Income.CapitalGains == 0 {
			outcome.AddWarning(
				"/income/capital_gains", "NO_CAPITAL_GAINS",
				"ITR2 selected without capital gains; ITR1 may suffice",
			)
		}
	case forms.ITR3:
		if form.Income.BusinessIncome == 0 && form.Income.ProfessionalIncome == 0 {
			outcome.AddWarning(
				"/income", "NO_BUSINESS_INCOME",
				"ITR3 selected without business or professional income",
			)
		}
	case forms.ITR4:
		if form.Income.BusinessIncome == 0 && form.Income.ProfessionalIncome == 0 {
			outcome.AddWarning(
				"/income", "NO_PRESUMPTIVE_INCOME",
				"ITR4 selected without presumptive income",
			)
		}
	}

	return outcome
}
