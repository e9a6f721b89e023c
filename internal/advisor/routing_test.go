package advisor

import (
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/veritax/veritax/internal/confidence"
	"github.com/veritax/veritax/internal/forms"
	"github.com/veritax/veritax/internal/intelligence"
)

func testRouter() *Router {
	return NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// A capital-gains-capable form with low blocked confidence and one regime
// warning routes to an advisor at high urgency.
func TestRouteLowConfidenceCapitalGains(t *testing.T) {
	result := &confidence.Result{
		TrustScore:     40,
		Band:           confidence.BandLow,
		BlockingIssues: true,
	}
	signals := []intelligence.Signal{
		{Category: intelligence.CategoryRegime, Severity: intelligence.SeverityWarning},
	}

	ctx := testRouter().Route(forms.ITR2, result, signals)

	if !ctx.Eligible {
		t.Fatal("ITR2 must be advisor eligible")
	}
	if !ctx.Recommended {
		t.Fatal("low band must recommend an advisor")
	}

	want := []string{ReasonLowConfidence, ReasonCapitalGains, ReasonRegimeAmbiguous}
	if !reflect.DeepEqual(ctx.ReasonCodes, want) {
		t.Fatalf("reason codes = %v, want %v", ctx.ReasonCodes, want)
	}
	if ctx.Urgency != UrgencyHigh {
		t.Fatalf("urgency = %s, want HIGH", ctx.Urgency)
	}
}

func TestRouteSimpleFormNeverEligible(t *testing.T) {
	result := &confidence.Result{Band: confidence.BandLow, BlockingIssues: true}
	signals := []intelligence.Signal{
		{Category: intelligence.CategoryRegime, Severity: intelligence.SeverityImportant},
		{Category: intelligence.CategoryIncome, Severity: intelligence.SeverityWarning},
	}

	ctx := testRouter().Route(forms.ITR1, result, signals)

	if ctx.Eligible || ctx.Recommended {
		t.Fatal("ITR1 must never be advisor eligible")
	}
	if len(ctx.ReasonCodes) != 0 {
		t.Fatalf("reason codes = %v, want none", ctx.ReasonCodes)
	}
	if ctx.Urgency != UrgencyLow {
		t.Fatalf("urgency = %s, want LOW", ctx.Urgency)
	}
}

func TestRouteMultipleWarnings(t *testing.T) {
	result := &confidence.Result{Band: confidence.BandMedium}
	signals := []intelligence.Signal{
		{Category: intelligence.CategoryIncome, Severity: intelligence.SeverityWarning},
		{Category: intelligence.CategoryDeduction, Severity: intelligence.SeverityWarning},
	}

	ctx := testRouter().Route(forms.ITR4, result, signals)

	if !ctx.Recommended {
		t.Fatal("two signals must recommend an advisor")
	}

	want := []string{ReasonMultipleWarnings, ReasonBusinessIncome}
	if !reflect.DeepEqual(ctx.ReasonCodes, want) {
		t.Fatalf("reason codes = %v, want %v", ctx.ReasonCodes, want)
	}
	if ctx.Urgency != UrgencyLow {
		t.Fatalf("urgency = %s, want LOW", ctx.Urgency)
	}
}

func TestRouteRegimeReasonAddedOnce(t *testing.T) {
	result := &confidence.Result{Band: confidence.BandMedium}
	signals := []intelligence.Signal{
		{Category: intelligence.CategoryRegime, Severity: intelligence.SeverityImportant},
		{Category: intelligence.CategoryRegime, Severity: intelligence.SeverityWarning},
	}

	ctx := testRouter().Route(forms.ITR3, result, signals)

	count := 0
	for _, code := range ctx.ReasonCodes {
		if code == ReasonRegimeAmbiguous {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("REGIME_AMBIGUOUS appears %d times, want once", count)
	}
}

func TestRouteHighBandFewSignals(t *testing.T) {
	result := &confidence.Result{Band: confidence.BandHigh}
	signals := []intelligence.Signal{
		{Category: intelligence.CategoryIncome, Severity: intelligence.SeverityInfo},
	}

	ctx := testRouter().Route(forms.ITR2, result, signals)

	if !ctx.Eligible {
		t.Fatal("ITR2 must be eligible")
	}
	if ctx.Recommended {
		t.Fatal("high band with one signal must not recommend")
	}
}

func TestRouteMediumUrgencyOnLowBand(t *testing.T) {
	result := &confidence.Result{Band: confidence.BandLow}

	ctx := testRouter().Route(forms.ITR3, result, nil)

	if ctx.Urgency != UrgencyMedium {
		t.Fatalf("urgency = %s, want MEDIUM", ctx.Urgency)
	}
}
