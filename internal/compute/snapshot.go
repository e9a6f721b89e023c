// Package compute provides the client for the external tax-computation
// service and the TaxSnapshot it produces. The computation arithmetic
// itself is owned by that service; this package only carries its results
// and the freshness stamp the submission pipeline depends on.
package compute

import "time"

// Regime identifies the tax regime a computation was performed under.
type Regime string

// Tax regimes.
const (
	RegimeOld Regime = "old"
	RegimeNew Regime = "new"
)

// RegimeComparison reports the liability under both regimes so the
// intelligence engine can flag a cheaper alternative.
type RegimeComparison struct {
	OldRegimeTax float64 `json:"old_regime_tax"`
	NewRegimeTax float64 `json:"new_regime_tax"`
	Recommended  Regime  `json:"recommended"`
}

// Saving returns how much the recommended regime saves over the other.
func (c RegimeComparison) Saving() float64 {
	diff := c.OldRegimeTax - c.NewRegimeTax
	if diff < 0 {
		return -diff
	}
	return diff
}

// TaxSnapshot is the computed result for one submission attempt.
// ComputedAt and ComputationVersion stamp the attempt that produced it;
// the payload builder refuses snapshots whose stamp predates the attempt.
type TaxSnapshot struct {
	GrossTotalIncome   float64           `json:"gross_total_income"`
	TotalDeductions    float64           `json:"total_deductions"`
	TaxableIncome      float64           `json:"taxable_income"`
	TaxLiability       float64           `json:"tax_liability"`
	TaxesPaid          float64           `json:"taxes_paid"`
	RefundDue          float64           `json:"refund_due"`
	AmountPayable      float64           `json:"amount_payable"`
	Regime             Regime            `json:"regime"`
	RegimeComparison   *RegimeComparison `json:"regime_comparison,omitempty"`
	ComputedAt         time.Time         `json:"computed_at"`
	ComputationVersion string            `json:"computation_version"`
}

// Fresh reports whether the snapshot carries its freshness stamp and was
// computed at or after the given attempt start.
func (s *TaxSnapshot) Fresh(attemptStart time.Time) bool {
	if s == nil || s.ComputationVersion == "" || s.ComputedAt.IsZero() {
		return false
	}
	return !s.ComputedAt.Before(attemptStart)
}
