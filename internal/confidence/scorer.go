// Package confidence derives the deterministic trust score and band for
// a submission attempt from advisory signals and verification metadata.
package confidence

import (
	"log/slog"

	"github.com/veritax/veritax/internal/compute"
	"github.com/veritax/veritax/internal/forms"
	"github.com/veritax/veritax/internal/intelligence"
	"github.com/veritax/veritax/internal/users"
)

// Band buckets the trust score.
type Band string

// Trust bands.
const (
	BandHigh   Band = "HIGH"
	BandMedium Band = "MEDIUM"
	BandLow    Band = "LOW"
)

// Score bounds and band cutoffs.
const (
	scoreStart   = 100
	scoreFloor   = 30
	scoreCeil    = 100
	highCutoff   = 80
	mediumCutoff = 55
)

// Penalty amounts.
const (
	penaltyImportantSignal = 15
	penaltyWarningSignal   = 7
	penaltyNoIncomeSource  = 10
	penaltyNoSalaryCert    = 15
	penaltyBankUnverified  = 10
	penaltyIdentity        = 25
)

// Drivers lists what pushed the score in each direction.
type Drivers struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
}

// Result is the trust evaluation for one submission attempt. It is
// derived per attempt and never stored independently.
type Result struct {
	TrustScore         int     `json:"trust_score"`
	Band               Band    `json:"band"`
	Drivers            Drivers `json:"drivers"`
	AdvisorRecommended bool    `json:"advisor_recommended"`
	BlockingIssues     bool    `json:"blocking_issues"`
}

// Scorer computes trust results.
type Scorer struct {
	logger *slog.Logger
}

// NewScorer creates a Scorer.
func NewScorer(logger *slog.Logger) *Scorer {
	return &Scorer{logger: logger.With("system", "confidence")}
}

// scoredCategories are the signal categories that carry score penalties.
var scoredCategories = map[intelligence.Category]bool{
	intelligence.CategoryIncome:    true,
	intelligence.CategoryDeduction: true,
	intelligence.CategoryRegime:    true,
	intelligence.CategoryRisk:      true,
}

// Evaluate derives the trust score, band, and drivers. Identity
// verification failure always sets BlockingIssues regardless of the
// remaining inputs.
func (s *Scorer) Evaluate(
	signals []intelligence.Signal,
	form *forms.FormData,
	snapshot *compute.TaxSnapshot,
	verification *users.Verification,
) *Result {
	result := &Result{TrustScore: scoreStart}

	for _, signal := range signals {
		if !scoredCategories[signal.Category] {
			continue
		}
		switch signal.Severity {
		case intelligence.SeverityImportant:
			result.TrustScore -= penaltyImportantSignal
			result.Drivers.Negative = append(result.Drivers.Negative, signal.ReasonCode)
		case intelligence.SeverityWarning:
			result.TrustScore -= penaltyWarningSignal
			result.Drivers.Negative = append(result.Drivers.Negative, signal.ReasonCode)
		}
	}

	if verification.IncomeStatementLinked {
		result.Drivers.Positive = append(result.Drivers.Positive, "INCOME_STATEMENT_LINKED")
	} else {
		result.TrustScore -= penaltyNoIncomeSource
		result.Drivers.Negative = append(result.Drivers.Negative, "NO_INCOME_STATEMENT")
	}

	if form.Income.Salary > 0 && !form.Income.HasSalaryCertificate() {
		result.TrustScore -= penaltyNoSalaryCert
		result.Drivers.Negative = append(result.Drivers.Negative, "SALARY_UNCERTIFIED")
	} else {
		result.Drivers.Positive = append(result.Drivers.Positive, "SALARY_CERTIFIED")
	}

	if verification.BankVerified {
		result.Drivers.Positive = append(result.Drivers.Positive, "BANK_VERIFIED")
	} else {
		result.TrustScore -= penaltyBankUnverified
		result.Drivers.Negative = append(result.Drivers.Negative, "BANK_UNVERIFIED")
	}

	if verification.IdentityVerified {
		result.Drivers.Positive = append(result.Drivers.Positive, "IDENTITY_VERIFIED")
	} else {
		result.TrustScore -= penaltyIdentity
		result.Drivers.Negative = append(result.Drivers.Negative, "IDENTITY_UNVERIFIED")
		result.BlockingIssues = true
	}

	if result.TrustScore < scoreFloor {
		result.TrustScore = scoreFloor
	}
	if result.TrustScore > scoreCeil {
		result.TrustScore = scoreCeil
	}

	switch {
	case result.TrustScore >= highCutoff:
		result.Band = BandHigh
	case result.TrustScore >= mediumCutoff:
		result.Band = BandMedium
	default:
		result.Band = BandLow
	}

	result.AdvisorRecommended = result.Band != BandHigh

	s.logger.Debug(
		"confidence evaluated",
		"score", result.TrustScore,
		"band", result.Band,
		"blocking", result.BlockingIssues,
	)
	return result
}
