package intelligence

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/veritax/veritax/internal/compute"
	"github.com/veritax/veritax/internal/forms"
)

func testEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func reasonCodes(signals []Signal) []string {
	codes := make([]string, len(signals))
	for i, s := range signals {
		codes[i] = s.ReasonCode
	}
	return codes
}

func TestAnalyzeSortsBySeverityWeight(t *testing.T) {
	// Salary over the 80C threshold with no savings, no Form 16, and a
	// regime comparison favoring the alternate regime.
	form := &forms.FormData{
		Income: forms.Income{Salary: 700_000},
	}
	snapshot := &compute.TaxSnapshot{
		Regime: compute.RegimeOld,
		RegimeComparison: &compute.RegimeComparison{
			OldRegimeTax: 52_000,
			NewRegimeTax: 48_000,
			Recommended:  compute.RegimeNew,
		},
	}

	signals := testEngine().Analyze(form, snapshot)

	if len(signals) != 3 {
		t.Fatalf("signals = %v, want 3", reasonCodes(signals))
	}

	// The important regime signal sorts first; warning ties keep module
	// emission order.
	want := []string{"REGIME_SAVING_AVAILABLE", "MISSING_80C", "SALARY_NO_FORM16"}
	for i, code := range want {
		if signals[i].ReasonCode != code {
			t.Fatalf("signals = %v, want %v", reasonCodes(signals), want)
		}
	}
}

func TestMissing80CRule(t *testing.T) {
	tests := []struct {
		name       string
		salary     float64
		deductions map[string]float64
		want       bool
	}{
		{"over threshold no savings", 600_000, nil, true},
		{"over threshold with savings", 600_000, map[string]float64{"80C": 50_000}, false},
		{"at threshold", 500_000, nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := &forms.FormData{
				Income:     forms.Income{Salary: tc.salary, Sources: []forms.IncomeSource{{Type: forms.SourceForm16}}},
				Deductions: tc.deductions,
			}
			signals := missing80CRule{}.Evaluate(form, nil, time.Now())
			if (len(signals) > 0) != tc.want {
				t.Fatalf("emitted = %v, want %v", len(signals) > 0, tc.want)
			}
		})
	}
}

func TestSeniorCitizen80DRule(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		dob  string
		want bool
	}{
		{"sixty with birthday passed", "1966-08-30", true},
		{"sixty with birthday tomorrow", "1966-08-31", false},
		{"well under sixty", "1990-01-01", false},
		{"missing date of birth", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := &forms.FormData{
				PersonalInfo: forms.PersonalInfo{DateOfBirth: tc.dob},
			}
			signals := seniorCitizen80DRule{}.Evaluate(form, nil, now)
			if (len(signals) > 0) != tc.want {
				t.Fatalf("emitted = %v, want %v", len(signals) > 0, tc.want)
			}
		})
	}
}

func TestMultipleEmployersRule(t *testing.T) {
	form := &forms.FormData{
		Income: forms.Income{
			TDS: []forms.TDSEntry{
				{EmployerTAN: "BLRA12345C", TaxDeducted: 40_000},
				{EmployerTAN: "DELB67890D", TaxDeducted: 15_000},
				{EmployerTAN: "BLRA12345C", TaxDeducted: 5_000},
			},
		},
	}

	signals := multipleEmployersRule{}.Evaluate(form, nil, time.Now())
	if len(signals) != 1 {
		t.Fatalf("expected one signal for two distinct TANs, got %d", len(signals))
	}
	if signals[0].Facts["employer_count"] != 2 {
		t.Fatalf("employer_count = %v, want 2", signals[0].Facts["employer_count"])
	}
}

func TestRegimeComparisonRule(t *testing.T) {
	tests := []struct {
		name     string
		snapshot *compute.TaxSnapshot
		want     bool
	}{
		{"nil snapshot", nil, false},
		{
			"saving below floor",
			&compute.TaxSnapshot{
				Regime: compute.RegimeOld,
				RegimeComparison: &compute.RegimeComparison{
					OldRegimeTax: 50_100, NewRegimeTax: 50_000, Recommended: compute.RegimeNew,
				},
			},
			false,
		},
		{
			"already on recommended regime",
			&compute.TaxSnapshot{
				Regime: compute.RegimeNew,
				RegimeComparison: &compute.RegimeComparison{
					OldRegimeTax: 60_000, NewRegimeTax: 48_000, Recommended: compute.RegimeNew,
				},
			},
			false,
		},
		{
			"material saving on alternate regime",
			&compute.TaxSnapshot{
				Regime: compute.RegimeOld,
				RegimeComparison: &compute.RegimeComparison{
					OldRegimeTax: 60_000, NewRegimeTax: 48_000, Recommended: compute.RegimeNew,
				},
			},
			true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			signals := regimeComparisonRule{}.Evaluate(&forms.FormData{}, tc.snapshot, time.Now())
			if (len(signals) > 0) != tc.want {
				t.Fatalf("emitted = %v, want %v", len(signals) > 0, tc.want)
			}
			if tc.want && signals[0].Severity != SeverityImportant {
				t.Fatalf("severity = %s, want important", signals[0].Severity)
			}
		})
	}
}
