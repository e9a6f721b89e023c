package drafts

import (
	"errors"
	"net/http"
)

// Domain errors for draft operations.
var ErrNotFound = errors.New("draft not found")

// MapHTTPStatus maps draft domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
