// Package filings implements the filing domain: the authoritative record
// of a return's progress from draft to filed, the lifecycle state machine
// gating submission, and persistence of submission outcomes.
package filings

import (
	"time"

	"github.com/google/uuid"

	"github.com/veritax/veritax/internal/forms"
)

// Filing is the persisted record of a single return. State is the single
// source of truth for lifecycle progress; Status is a read-only projection
// of it kept for listing surfaces.
type Filing struct {
	ID                   uuid.UUID      `json:"id"`
	UserID               uuid.UUID      `json:"user_id"`
	FormType             forms.FormType `json:"form_type"`
	AssessmentYear       string         `json:"assessment_year"`
	State                State          `json:"state"`
	Status               string         `json:"status"`
	TaxLiability         *float64       `json:"tax_liability"`
	RefundAmount         *float64       `json:"refund_amount"`
	Regime               *string        `json:"regime"`
	SnapshotJSON         []byte         `json:"-"`
	PayloadKey           *string        `json:"payload_key"`
	AcknowledgmentNumber *string        `json:"acknowledgment_number"`
	SubmissionToken      *string        `json:"submission_token"`
	VerificationMethod   *string        `json:"verification_method"`
	VerificationToken    *string        `json:"-"`
	FiledBy              *uuid.UUID     `json:"filed_by"`
	SubmittedAt          *time.Time     `json:"submitted_at"`
	FiledAt              *time.Time     `json:"filed_at"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// Verification is the e-verification choice supplied with a submission.
type Verification struct {
	Method string `json:"method"`
	Token  string `json:"token,omitempty"`
}

// MarkFiledCommand carries everything persisted after the gateway accepts
// a submission.
type MarkFiledCommand struct {
	FilingID             uuid.UUID
	TaxLiability         float64
	RefundAmount         float64
	Regime               string
	SnapshotJSON         []byte
	PayloadKey           string
	AcknowledgmentNumber string
	SubmissionToken      *string
	Verification         Verification
	FiledBy              uuid.UUID
	SubmittedAt          time.Time
}
