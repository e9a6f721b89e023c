package formbuilder

import (
	"errors"
	"fmt"

	"github.com/veritax/veritax/internal/validation"
)

// Errors raised by the payload pipeline.
var (
	// ErrUnsupportedForm marks a form type with no registered builder.
	// This is a terminal error: raw draft data must never pass through
	// to the gateway.
	ErrUnsupportedForm = errors.New("unsupported form type")

	// ErrStaleSnapshot marks a snapshot missing its freshness stamp or
	// computed before the current attempt started.
	ErrStaleSnapshot = errors.New("tax snapshot is stale")

	// ErrGeneration marks a builder or payload-validator failure.
	ErrGeneration = errors.New("payload generation failed")
)

// GenerationError carries the structured validation findings from a
// failed payload build.
type GenerationError struct {
	FormType string             `json:"form_type"`
	Outcome  validation.Outcome `json:"outcome"`
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf(
		"payload generation failed for %s with %d error(s)",
		e.FormType, len(e.Outcome.Errors),
	)
}

func (e *GenerationError) Unwrap() error { return ErrGeneration }

// Detail exposes the structured outcome for error responses.
func (e *GenerationError) Detail() any { return e }
