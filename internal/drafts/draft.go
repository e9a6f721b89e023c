// Package drafts implements the mutable draft tied 1:1 to a filing until
// the filing locks.
package drafts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veritax/veritax/internal/forms"
)

// Draft holds the editable form data for a filing.
type Draft struct {
	ID             uuid.UUID `json:"id"`
	FilingID       uuid.UUID `json:"filing_id"`
	UserID         uuid.UUID `json:"user_id"`
	AssessmentYear string    `json:"assessment_year"`
	FormDataJSON   []byte    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FormData unmarshals the stored draft content into the normalized form
// model.
func (d *Draft) FormData() (*forms.FormData, error) {
	var form forms.FormData
	if err := json.Unmarshal(d.FormDataJSON, &form); err != nil {
		return nil, fmt.Errorf("decode draft form data: %w", err)
	}
	return &form, nil
}
