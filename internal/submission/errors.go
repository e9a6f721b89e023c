package submission

import (
	"errors"
	"net/http"

	"github.com/veritax/veritax/internal/drafts"
	"github.com/veritax/veritax/internal/filings"
	"github.com/veritax/veritax/internal/formbuilder"
	"github.com/veritax/veritax/internal/gateway"
	"github.com/veritax/veritax/internal/users"
	"github.com/veritax/veritax/internal/validation"
)

// Errors owned by the submission orchestrator. Domain stages carry their
// own taxonomy; these cover the two outcomes only the orchestrator can
// observe.
var (
	// ErrComputationRequired marks a failed fresh computation. Fatal: no
	// payload is generated from a missing or stale snapshot.
	ErrComputationRequired = errors.New("fresh tax computation required")

	// ErrReconciliationRequired marks a persistence failure after the
	// gateway already accepted the return. The external system may hold
	// the filing as submitted while the local record does not.
	ErrReconciliationRequired = errors.New("filing persisted state requires reconciliation")
)

// MapHTTPStatus translates submission pipeline errors to HTTP status
// codes, deferring to each stage's own mapping.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, drafts.ErrNotFound),
		errors.Is(err, filings.ErrNotFound),
		errors.Is(err, users.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, filings.ErrFilingLocked),
		errors.Is(err, filings.ErrAlreadyFiled),
		errors.Is(err, filings.ErrClaimConflict):
		return http.StatusConflict
	case errors.Is(err, validation.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, formbuilder.ErrUnsupportedForm),
		errors.Is(err, formbuilder.ErrStaleSnapshot),
		errors.Is(err, formbuilder.ErrGeneration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrComputationRequired):
		return http.StatusBadGateway
	case errors.Is(err, gateway.ErrGatewayUnavailable),
		errors.Is(err, gateway.ErrGatewayRejected):
		return gateway.MapHTTPStatus(err)
	default:
		return http.StatusInternalServerError
	}
}
