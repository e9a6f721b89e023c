// Package advisor decides professional-review eligibility and urgency
// from the confidence result and advisory signals. Routing is advisory
// and best-effort: it never returns an error and must never block a
// submission.
package advisor

import (
	"log/slog"

	"github.com/veritax/veritax/internal/confidence"
	"github.com/veritax/veritax/internal/forms"
	"github.com/veritax/veritax/internal/intelligence"
)

// Urgency ranks how quickly a professional should look at the return.
type Urgency string

// Urgency levels.
const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// Reason codes for recommending professional review.
const (
	ReasonLowConfidence    = "LOW_CONFIDENCE"
	ReasonMultipleWarnings = "MULTIPLE_WARNINGS"
	ReasonBusinessIncome   = "BUSINESS_INCOME"
	ReasonCapitalGains     = "CAPITAL_GAINS_PRESENT"
	ReasonRegimeAmbiguous  = "REGIME_AMBIGUOUS"
)

// RequestStatus tracks an externally raised information request.
type RequestStatus string

// Information request statuses.
const (
	RequestOpen     RequestStatus = "open"
	RequestAnswered RequestStatus = "answered"
	RequestClosed   RequestStatus = "closed"
)

// InfoRequest is a question raised by a reviewing professional.
type InfoRequest struct {
	ID       string        `json:"id"`
	Category string        `json:"category"`
	Reason   string        `json:"reason"`
	Blocking bool          `json:"blocking"`
	Status   RequestStatus `json:"status"`
	RaisedBy string        `json:"raised_by"`
}

// Context is the advisor-routing outcome attached to a submission
// attempt.
type Context struct {
	Eligible    bool          `json:"eligible"`
	Recommended bool          `json:"recommended"`
	ReasonCodes []string      `json:"reason_codes"`
	Urgency     Urgency       `json:"urgency"`
	Requests    []InfoRequest `json:"requests"`
}

// Router computes advisor routing decisions.
type Router struct {
	logger *slog.Logger
}

// NewRouter creates a Router.
func NewRouter(logger *slog.Logger) *Router {
	return &Router{logger: logger.With("system", "advisor")}
}

// Route derives the advisor context. Each reason code appears at most
// once. ITR1 is never eligible.
func (r *Router) Route(
	formType forms.FormType,
	result *confidence.Result,
	signals []intelligence.Signal,
) *Context {
	ctx := &Context{
		Eligible: formType.Complex(),
		Urgency:  UrgencyLow,
		Requests: []InfoRequest{},
	}

	if !ctx.Eligible {
		return ctx
	}

	ctx.Recommended = result.Band != confidence.BandHigh || len(signals) >= 2

	if result.Band == confidence.BandLow {
		ctx.ReasonCodes = append(ctx.ReasonCodes, ReasonLowConfidence)
	}
	if len(signals) >= 2 && result.Band != confidence.BandLow {
		ctx.ReasonCodes = append(ctx.ReasonCodes, ReasonMultipleWarnings)
	}
	if formType.HasBusinessIncome() {
		ctx.ReasonCodes = append(ctx.ReasonCodes, ReasonBusinessIncome)
	}
	if formType.HasCapitalGains() {
		ctx.ReasonCodes = append(ctx.ReasonCodes, ReasonCapitalGains)
	}
	for _, signal := range signals {
		if signal.Category == intelligence.CategoryRegime && signal.Severity != intelligence.SeverityInfo {
			ctx.ReasonCodes = append(ctx.ReasonCodes, ReasonRegimeAmbiguous)
			break
		}
	}

	switch {
	case result.BlockingIssues:
		ctx.Urgency = UrgencyHigh
	case result.Band == confidence.BandLow:
		ctx.Urgency = UrgencyMedium
	}

	r.logger.Debug(
		"advisor routing decided",
		"form_type", formType,
		"recommended", ctx.Recommended,
		"urgency", ctx.Urgency,
		"reasons", ctx.ReasonCodes,
	)
	return ctx
}
