package filings

import (
	"net/url"

	"github.com/veritax/veritax/pkg/query"
	"github.com/veritax/veritax/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "filings", "f").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("form_type", "FormType").
	Project("assessment_year", "AssessmentYear").
	Project("state", "State").
	Project("status", "Status").
	Project("tax_liability", "TaxLiability").
	Project("refund_amount", "RefundAmount").
	Project("regime", "Regime").
	Project("snapshot", "Snapshot").
	Project("payload_key", "PayloadKey").
	Project("acknowledgment_number", "AcknowledgmentNumber").
	Project("submission_token", "SubmissionToken").
	Project("verification_method", "VerificationMethod").
	Project("verification_token", "VerificationToken").
	Project("filed_by", "FiledBy").
	Project("submitted_at", "SubmittedAt").
	Project("filed_at", "FiledAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for filing queries.
// Nil fields are ignored.
type Filters struct {
	UserID         *string `json:"user_id,omitempty"`
	FormType       *string `json:"form_type,omitempty"`
	AssessmentYear *string `json:"assessment_year,omitempty"`
	State          *string `json:"state,omitempty"`
	Status         *string `json:"status,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("UserID", f.UserID).
		WhereEquals("FormType", f.FormType).
		WhereEquals("AssessmentYear", f.AssessmentYear).
		WhereEquals("State", f.State).
		WhereEquals("Status", f.Status)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("user_id"); v != "" {
		f.UserID = &v
	}
	if v := values.Get("form_type"); v != "" {
		f.FormType = &v
	}
	if v := values.Get("assessment_year"); v != "" {
		f.AssessmentYear = &v
	}
	if v := values.Get("state"); v != "" {
		f.State = &v
	}
	if v := values.Get("status"); v != "" {
		f.Status = &v
	}

	return f
}

func scanFiling(s repository.Scanner) (Filing, error) {
	var f Filing
	err := s.Scan(
		&f.ID,
		&f.UserID,
		&f.FormType,
		&f.AssessmentYear,
		&f.State,
		&f.Status,
		&f.TaxLiability,
		&f.RefundAmount,
		&f.Regime,
		&f.SnapshotJSON,
		&f.PayloadKey,
		&f.AcknowledgmentNumber,
		&f.SubmissionToken,
		&f.VerificationMethod,
		&f.VerificationToken,
		&f.FiledBy,
		&f.SubmittedAt,
		&f.FiledAt,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	return f, err
}
