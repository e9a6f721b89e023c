package validation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/veritax/veritax/internal/forms"
)

type stubAudit struct {
	applicable bool
	err        error
}

func (s stubAudit) AuditApplicable(context.Context, *forms.FormData) (bool, error) {
	return s.applicable, s.err
}

func testValidator(t *testing.T, audit AuditChecker) *Validator {
	t.Helper()
	v, err := New(audit, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("validator init: %v", err)
	}
	return v
}

func hasCode(issues []Issue, code string) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

func TestBalanceSheetTolerance(t *testing.T) {
	tests := []struct {
		name        string
		assets      float64
		liabilities float64
		wantError   bool
	}{
		{"two paise over tolerance", 100_000.00, 100_000.02, true},
		{"exactly balanced", 100_000.00, 100_000.00, false},
		{"within tolerance", 100_000.00, 100_000.01, false},
	}

	v := testValidator(t, stubAudit{})

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := &forms.FormData{
				FormType: forms.ITR3,
				BalanceSheet: &forms.BalanceSheet{
					Assets:      tc.assets,
					Liabilities: tc.liabilities,
				},
			}

			outcome, err := v.ValidateBusinessRules(context.Background(), form, forms.ITR3)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := hasCode(outcome.Errors, "BALANCE_SHEET_MISMATCH")
			if got != tc.wantError {
				t.Fatalf("mismatch error = %v, want %v (errors: %v)", got, tc.wantError, outcome.Errors)
			}
		})
	}
}

func TestPresumptiveCaps(t *testing.T) {
	tests := []struct {
		name     string
		business float64
		prof     float64
		wantCode string
	}{
		{"business one over cap", 2_000_001, 0, "PRESUMPTIVE_BUSINESS_CAP"},
		{"business at cap", 2_000_000, 0, ""},
		{"professional one over cap", 0, 500_001, "PRESUMPTIVE_PROFESSIONAL_CAP"},
		{"professional at cap", 0, 500_000, ""},
	}

	v := testValidator(t, stubAudit{})

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := &forms.FormData{
				FormType: forms.ITR4,
				Income: forms.Income{
					BusinessIncome:     tc.business,
					ProfessionalIncome: tc.prof,
				},
			}

			outcome, err := v.ValidateBusinessRules(context.Background(), form, forms.ITR4)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tc.wantCode == "" {
				if !outcome.Valid {
					t.Fatalf("expected pass, got errors: %v", outcome.Errors)
				}
				return
			}
			if !hasCode(outcome.Errors, tc.wantCode) {
				t.Fatalf("missing %s in %v", tc.wantCode, outcome.Errors)
			}
		})
	}
}

func TestAuditApplicability(t *testing.T) {
	tests := []struct {
		name       string
		applicable bool
		audit      *forms.AuditInfo
		wantError  bool
	}{
		{"not applicable", false, nil, false},
		{"applicable and missing", true, nil, true},
		{"applicable and incomplete", true, &forms.AuditInfo{ReportDate: "2026-07-01"}, true},
		{
			"applicable and complete", true,
			&forms.AuditInfo{
				ReportDate:           "2026-07-01",
				AuditorName:          "S Rao",
				AuditorMembershipNum: "123456",
			},
			false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := testValidator(t, stubAudit{applicable: tc.applicable})

			form := &forms.FormData{FormType: forms.ITR3, Audit: tc.audit}
			outcome, err := v.ValidateBusinessRules(context.Background(), form, forms.ITR3)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := hasCode(outcome.Errors, "AUDIT_REPORT_INCOMPLETE")
			if got != tc.wantError {
				t.Fatalf("audit error = %v, want %v", got, tc.wantError)
			}
		})
	}
}

func TestAuditCheckerFailurePropagates(t *testing.T) {
	v := testValidator(t, stubAudit{err: errors.New("service down")})

	form := &forms.FormData{FormType: forms.ITR3}
	if _, err := v.ValidateBusinessRules(context.Background(), form, forms.ITR3); err == nil {
		t.Fatal("expected audit checker failure to propagate")
	}
}

// Every violation accumulates; nothing short-circuits.
func TestBusinessRulesAccumulate(t *testing.T) {
	v := testValidator(t, stubAudit{applicable: true})

	form := &forms.FormData{
		FormType:     forms.ITR3,
		BalanceSheet: &forms.BalanceSheet{Assets: 500_000, Liabilities: 100_000},
	}

	outcome, err := v.ValidateBusinessRules(context.Background(), form, forms.ITR3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Errors) != 2 {
		t.Fatalf("errors = %v, want audit and balance sheet findings", outcome.Errors)
	}
}

func TestValidatePayloadFormTypeMismatch(t *testing.T) {
	v := testValidator(t, stubAudit{})

	form := validForm(forms.ITR1)
	form.FormType = forms.ITR2

	outcome, err := v.ValidatePayload(form, forms.ITR1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasCode(outcome.Errors, "FORM_TYPE_MISMATCH") {
		t.Fatalf("missing FORM_TYPE_MISMATCH in %v", outcome.Errors)
	}
}

func TestValidatePayloadAccepted(t *testing.T) {
	v := testValidator(t, stubAudit{})

	outcome, err := v.ValidatePayload(validForm(forms.ITR1), forms.ITR1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Valid {
		t.Fatalf("expected valid outcome, got errors: %v", outcome.Errors)
	}
}

func validForm(formType forms.FormType) *forms.FormData {
	return &forms.FormData{
		FormType: formType,
		PersonalInfo: forms.PersonalInfo{
			PAN:         "ABCDE1234F",
			Name:        "A Kumar",
			DateOfBirth: "1980-04-12",
			Address: forms.Address{
				Line1:   "12 MG Road",
				City:    "Bengaluru",
				State:   "Karnataka",
				PinCode: "560001",
			},
		},
		BankDetails: forms.BankDetails{
			AccountNumber: "123456789012",
			IFSC:          "HDFC0001234",
			BankName:      "HDFC Bank",
		},
		Income: forms.Income{
			Salary:  900_000,
			Sources: []forms.IncomeSource{{Type: forms.SourceForm16}},
		},
		Deductions: map[string]float64{"80C": 150_000},
	}
}
