package submission

import (
	"github.com/veritax/veritax/internal/advisor"
	"github.com/veritax/veritax/internal/compute"
	"github.com/veritax/veritax/internal/confidence"
	"github.com/veritax/veritax/internal/filings"
	"github.com/veritax/veritax/internal/intelligence"
)

// Request is the submission command body.
type Request struct {
	// AssessmentYear overrides the draft's stored assessment year when
	// set. Resolution order: override, stored value, platform default.
	AssessmentYear string               `json:"assessment_year,omitempty"`
	Verification   filings.Verification `json:"verification"`
}

// Result is the successful submission outcome returned to the caller.
// Confidence and Advisor are nil when the advisory stage degraded.
type Result struct {
	Filing               *filings.Filing       `json:"filing"`
	AcknowledgmentNumber string                `json:"acknowledgment_number"`
	SubmissionToken      *string               `json:"submission_token"`
	Confidence           *confidence.Result    `json:"confidence,omitempty"`
	Advisor              *advisor.Context      `json:"advisor,omitempty"`
	Signals              []intelligence.Signal `json:"signals,omitempty"`
}

// attemptSnapshot is the persisted snapshot shape: the computed amounts
// plus whatever advisory metadata the attempt produced.
type attemptSnapshot struct {
	compute.TaxSnapshot
	Signals        []intelligence.Signal `json:"signals,omitempty"`
	Confidence     *confidence.Result    `json:"confidence,omitempty"`
	AdvisorContext *advisor.Context      `json:"advisor_context,omitempty"`
}
