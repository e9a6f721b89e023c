package intelligence

import (
	"time"

	"github.com/veritax/veritax/internal/compute"
	"github.com/veritax/veritax/internal/forms"
)

// Thresholds for the built-in rules.
const (
	salary80CThreshold = 500_000.0
	seniorCitizenAge   = 60
	regimeSavingFloor  = 100.0
)

// missing80CRule flags salaried taxpayers above the threshold who declare
// no 80C savings.
type missing80CRule struct{}

func (missing80CRule) Name() string { return "missing_80c" }

func (missing80CRule) Evaluate(form *forms.FormData, _ *compute.TaxSnapshot, _ time.Time) []Signal {
	if form.Income.Salary <= salary80CThreshold || form.Deduction("80C") > 0 {
		return nil
	}
	return []Signal{{
		ID:         "missing_80c",
		Category:   CategoryDeduction,
		Severity:   SeverityWarning,
		Confidence: 0.9,
		ReasonCode: "MISSING_80C",
		Facts: map[string]any{
			"salary": form.Income.Salary,
		},
		Recommendation: "Salary exceeds 5,00,000 with no 80C savings declared; investments up to 1,50,000 reduce taxable income.",
	}}
}

// seniorCitizen80DRule flags taxpayers aged 60 or above who declare no
// 80D health deduction. Age is computed calendar-aware from date of
// birth: the birthday must have passed.
type seniorCitizen80DRule struct{}

func (seniorCitizen80DRule) Name() string { return "senior_citizen_80d" }

func (seniorCitizen80DRule) Evaluate(form *forms.FormData, _ *compute.TaxSnapshot, now time.Time) []Signal {
	age := form.PersonalInfo.AgeOn(now)
	if age < seniorCitizenAge || form.Deduction("80D") > 0 {
		return nil
	}
	return []Signal{{
		ID:         "senior_citizen_80d",
		Category:   CategoryDeduction,
		Severity:   SeverityWarning,
		Confidence: 0.85,
		ReasonCode: "MISSING_SENIOR_80D",
		Facts: map[string]any{
			"age": age,
		},
		Recommendation: "Senior citizens can claim up to 50,000 under 80D for health insurance premiums and medical expenditure.",
	}}
}

// salaryCertificateRule flags declared salary with no employer-issued
// salary certificate (Form 16) among the income sources.
type salaryCertificateRule struct{}

func (salaryCertificateRule) Name() string { return "salary_certificate" }

func (salaryCertificateRule) Evaluate(form *forms.FormData, _ *compute.TaxSnapshot, _ time.Time) []Signal {
	if form.Income.Salary <= 0 || form.Income.HasSalaryCertificate() {
		return nil
	}
	return []Signal{{
		ID:         "salary_without_form16",
		Category:   CategoryIncome,
		Severity:   SeverityWarning,
		Confidence: 0.8,
		ReasonCode: "SALARY_NO_FORM16",
		Facts: map[string]any{
			"salary": form.Income.Salary,
		},
		Recommendation: "Salary is declared without a Form 16; upload the employer certificate so figures can be cross-checked.",
	}}
}

// multipleEmployersRule flags more than one distinct employer TAN among
// the salary TDS entries.
type multipleEmployersRule struct{}

func (multipleEmployersRule) Name() string { return "multiple_employers" }

func (multipleEmployersRule) Evaluate(form *forms.FormData, _ *compute.TaxSnapshot, _ time.Time) []Signal {
	count := form.Income.DistinctEmployerTANs()
	if count <= 1 {
		return nil
	}
	return []Signal{{
		ID:         "multiple_employer_tans",
		Category:   CategoryIncome,
		Severity:   SeverityWarning,
		Confidence: 0.95,
		ReasonCode: "MULTIPLE_EMPLOYERS",
		Facts: map[string]any{
			"employer_count": count,
		},
		Recommendation: "TDS entries span multiple employers; verify slab relief was not claimed twice across jobs.",
	}}
}

// regimeComparisonRule flags a computed regime comparison showing the
// alternate regime saves more than the floor amount.
type regimeComparisonRule struct{}

func (regimeComparisonRule) Name() string { return "regime_comparison" }

func (regimeComparisonRule) Evaluate(form *forms.FormData, snapshot *compute.TaxSnapshot, _ time.Time) []Signal {
	if snapshot == nil || snapshot.RegimeComparison == nil {
		return nil
	}

	cmp := snapshot.RegimeComparison
	if cmp.Saving() <= regimeSavingFloor || cmp.Recommended == snapshot.Regime {
		return nil
	}

	return []Signal{{
		ID:         "regime_saving",
		Category:   CategoryRegime,
		Severity:   SeverityImportant,
		Confidence: 1.0,
		ReasonCode: "REGIME_SAVING_AVAILABLE",
		Facts: map[string]any{
			"current_regime":     snapshot.Regime,
			"recommended_regime": cmp.Recommended,
			"saving":             cmp.Saving(),
		},
		Recommendation: "The alternate tax regime computes a lower liability; switching before filing saves tax.",
	}}
}
