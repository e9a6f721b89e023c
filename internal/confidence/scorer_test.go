package confidence

import (
	"io"
	"log/slog"
	"testing"

	"github.com/veritax/veritax/internal/compute"
	"github.com/veritax/veritax/internal/forms"
	"github.com/veritax/veritax/internal/intelligence"
	"github.com/veritax/veritax/internal/users"
)

func testScorer() *Scorer {
	return NewScorer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// Uncertified salary of 600,000 with no linked income statement, no bank
// verification, and a failed identity check. One info signal carries no
// penalty, so the score lands at 100-10-15-10-25 = 40.
func TestEvaluateDegradedProfile(t *testing.T) {
	signals := []intelligence.Signal{
		{Category: intelligence.CategoryDeduction, Severity: intelligence.SeverityInfo},
	}
	form := &forms.FormData{
		Income: forms.Income{Salary: 600_000},
	}
	verification := &users.Verification{}

	result := testScorer().Evaluate(signals, form, &compute.TaxSnapshot{}, verification)

	if result.TrustScore != 40 {
		t.Fatalf("score = %d, want 40", result.TrustScore)
	}
	if result.Band != BandLow {
		t.Fatalf("band = %s, want LOW", result.Band)
	}
	if !result.AdvisorRecommended {
		t.Fatal("advisor must be recommended below the high band")
	}
	if !result.BlockingIssues {
		t.Fatal("identity unverified must set blocking issues")
	}
}

func TestEvaluateClampsToFloor(t *testing.T) {
	var signals []intelligence.Signal
	for i := 0; i < 10; i++ {
		signals = append(signals, intelligence.Signal{
			Category: intelligence.CategoryRisk,
			Severity: intelligence.SeverityImportant,
		})
	}

	form := &forms.FormData{Income: forms.Income{Salary: 500_000}}
	result := testScorer().Evaluate(signals, form, &compute.TaxSnapshot{}, &users.Verification{})

	if result.TrustScore != 30 {
		t.Fatalf("score = %d, want floor 30", result.TrustScore)
	}
	if result.Band != BandLow {
		t.Fatalf("band = %s, want LOW", result.Band)
	}
}

func TestEvaluateIdentityAlwaysBlocks(t *testing.T) {
	// Everything else verified: only the identity penalty applies.
	form := &forms.FormData{
		Income: forms.Income{
			Salary:  400_000,
			Sources: []forms.IncomeSource{{Type: forms.SourceForm16}},
		},
	}
	verification := &users.Verification{
		IdentityVerified:      false,
		BankVerified:          true,
		IncomeStatementLinked: true,
	}

	result := testScorer().Evaluate(nil, form, &compute.TaxSnapshot{}, verification)

	if !result.BlockingIssues {
		t.Fatal("identity unverified must imply blocking issues regardless of other inputs")
	}
	if result.TrustScore != 75 {
		t.Fatalf("score = %d, want 75", result.TrustScore)
	}
	if result.Band != BandMedium {
		t.Fatalf("band = %s, want MEDIUM", result.Band)
	}
}

func TestEvaluateFullyVerified(t *testing.T) {
	form := &forms.FormData{
		Income: forms.Income{
			Salary:  800_000,
			Sources: []forms.IncomeSource{{Type: forms.SourceForm16}},
		},
	}
	verification := &users.Verification{
		IdentityVerified:      true,
		BankVerified:          true,
		IncomeStatementLinked: true,
	}

	result := testScorer().Evaluate(nil, form, &compute.TaxSnapshot{}, verification)

	if result.TrustScore != 100 {
		t.Fatalf("score = %d, want 100", result.TrustScore)
	}
	if result.Band != BandHigh {
		t.Fatalf("band = %s, want HIGH", result.Band)
	}
	if result.AdvisorRecommended {
		t.Fatal("advisor must not be recommended at the high band")
	}
	if result.BlockingIssues {
		t.Fatal("no blocking issues expected")
	}
	if len(result.Drivers.Positive) != 4 {
		t.Fatalf("positive drivers = %v, want 4 entries", result.Drivers.Positive)
	}
}

func TestInfoSignalsCarryNoPenalty(t *testing.T) {
	signals := []intelligence.Signal{
		{Category: intelligence.CategoryIncome, Severity: intelligence.SeverityInfo},
		{Category: intelligence.CategoryRegime, Severity: intelligence.SeverityInfo},
	}
	form := &forms.FormData{
		Income: forms.Income{
			Salary:  300_000,
			Sources: []forms.IncomeSource{{Type: forms.SourceForm16}},
		},
	}
	verification := &users.Verification{
		IdentityVerified:      true,
		BankVerified:          true,
		IncomeStatementLinked: true,
	}

	result := testScorer().Evaluate(signals, form, &compute.TaxSnapshot{}, verification)
	if result.TrustScore != 100 {
		t.Fatalf("score = %d, want 100", result.TrustScore)
	}
}
