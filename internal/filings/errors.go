package filings

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for filing operations.
var (
	ErrNotFound      = errors.New("filing not found")
	ErrFilingLocked  = errors.New("filing locked")
	ErrAlreadyFiled  = errors.New("filing already submitted")
	ErrClaimConflict = errors.New("submission already in progress")
)

// LockedError reports a state machine denial with the context collaborating
// surfaces need: the current state, the actions still available, and the
// states the actor's role could submit from.
type LockedError struct {
	State           State    `json:"state"`
	Allowed         []Action `json:"allowed_actions"`
	SubmittableFrom []State  `json:"submittable_from"`
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("filing locked in state %s", e.State)
}

func (e *LockedError) Unwrap() error { return ErrFilingLocked }

// Detail exposes the structured lock context for error responses.
func (e *LockedError) Detail() any { return e }

// MapHTTPStatus maps filing domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrFilingLocked), errors.Is(err, ErrAlreadyFiled),
		errors.Is(err, ErrClaimConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
