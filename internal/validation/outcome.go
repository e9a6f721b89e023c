// Package validation implements schema and business-rule validation of
// filing form data. Every validator returns an Outcome rather than
// raising: callers always see the complete error and warning lists in
// one response.
package validation

import (
	"errors"
	"fmt"
)

// ErrValidationFailed marks any validation outcome with errors.
var ErrValidationFailed = errors.New("validation failed")

// Issue is a single validation finding tied to a field path.
type Issue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Outcome accumulates findings from one or more validators. Valid is the
// conjunction of all merged validators.
type Outcome struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// NewOutcome returns a passing outcome with no findings.
func NewOutcome() *Outcome {
	return &Outcome{Valid: true}
}

// AddError records a violation and marks the outcome invalid.
func (o *Outcome) AddError(field, code, message string) {
	o.Valid = false
	o.Errors = append(o.Errors, Issue{Field: field, Code: code, Message: message})
}

// AddWarning records a non-blocking finding.
func (o *Outcome) AddWarning(field, code, message string) {
	o.Warnings = append(o.Warnings, Issue{Field: field, Code: code, Message: message})
}

// Merge folds another outcome into this one.
func (o *Outcome) Merge(other *Outcome) {
	if other == nil {
		return
	}
	o.Valid = o.Valid && other.Valid
	o.Errors = append(o.Errors, other.Errors...)
	o.Warnings = append(o.Warnings, other.Warnings...)
}

// Err returns a FailedError when the outcome is invalid, nil otherwise.
func (o *Outcome) Err() error {
	if o.Valid {
		return nil
	}
	return &FailedError{Outcome: *o}
}

// FailedError carries the full structured outcome of a failed validation.
type FailedError struct {
	Outcome Outcome `json:"outcome"`
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s)", len(e.Outcome.Errors))
}

func (e *FailedError) Unwrap() error { return ErrValidationFailed }

// Detail exposes the structured outcome for error responses.
func (e *FailedError) Detail() any { return e.Outcome }
