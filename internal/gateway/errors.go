package gateway

import (
	"errors"
	"net/http"
)

// Errors classifying gateway submission failures.
var (
	// ErrGatewayUnavailable marks a retryable failure: the return may be
	// resubmitted without change.
	ErrGatewayUnavailable = errors.New("filing gateway unavailable")

	// ErrGatewayRejected marks a terminal rejection: the gateway refused
	// the return itself.
	ErrGatewayRejected = errors.New("filing gateway rejected submission")
)

// Kind classifies a submission failure.
type Kind int

const (
	KindRetryable Kind = iota
	KindTerminal
)

// SubmitError carries the failure classification and any response body
// the gateway returned.
type SubmitError struct {
	Kind    Kind
	Message string
	Body    string
	Err     error
}

func (e *SubmitError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SubmitError) Unwrap() error {
	switch e.Kind {
	case KindTerminal:
		return ErrGatewayRejected
	default:
		return ErrGatewayUnavailable
	}
}

// Detail surfaces the gateway response body in error payloads.
func (e *SubmitError) Detail() any {
	if e.Body == "" {
		return nil
	}
	return map[string]string{"gateway_response": e.Body}
}

// Retryable reports whether err represents a failure that may be
// retried without changing the return.
func Retryable(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable)
}

// MapHTTPStatus translates gateway errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrGatewayUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, ErrGatewayRejected):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
