// Package users implements taxpayer identity lookup and the verification
// profile consumed by confidence scoring.
package users

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered taxpayer.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	PAN           string    `json:"pan"`
	PANVerified   bool      `json:"pan_verified"`
	GatewayUserID string    `json:"gateway_user_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Verification is the third-party verification profile the confidence
// scorer weighs. IdentityVerified reflects PAN verification against the
// department; IncomeStatementLinked reflects a pulled AIS/26AS statement.
type Verification struct {
	IdentityVerified      bool `json:"identity_verified"`
	BankVerified          bool `json:"bank_verified"`
	IncomeStatementLinked bool `json:"income_statement_linked"`
}
