package formbuilder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/veritax/veritax/internal/compute"
	"github.com/veritax/veritax/internal/forms"
)

// Pipeline dispatches payload generation to the builder registered for a
// form type.
type Pipeline struct {
	builders map[forms.FormType]builder
	logger   *slog.Logger
}

// NewPipeline creates a Pipeline with builders for every supported form.
func NewPipeline(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		builders: map[forms.FormType]builder{
			forms.ITR1: itr1Builder{},
			forms.ITR2: itr2Builder{},
			forms.ITR3: itr3Builder{},
			forms.ITR4: itr4Builder{},
		},
		logger: logger.With("system", "formbuilder"),
	}
}

// Build assembles and validates the gateway payload, returning the
// serialized bytes ready for signing.
//
// The attemptStart guard enforces snapshot freshness: a snapshot
// computed before this submission attempt began must never be signed or
// transmitted, so the builder refuses it rather than trusting the
// caller's sequencing.
func (p *Pipeline) Build(
	rawFormType string,
	form *forms.FormData,
	snapshot *compute.TaxSnapshot,
	year string,
	attemptStart time.Time,
) ([]byte, error) {
	formType, err := forms.Normalize(rawFormType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedForm, err)
	}

	b, ok := p.builders[formType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedForm, formType)
	}

	if !snapshot.Fresh(attemptStart) {
		return nil, fmt.Errorf(
			"%w: computed %s, attempt started %s",
			ErrStaleSnapshot,
			stamp(snapshot),
			attemptStart.Format(time.RFC3339),
		)
	}

	payload := b.Build(form, snapshot, year)

	if outcome := b.Validate(payload); !outcome.Valid {
		return nil, &GenerationError{FormType: string(formType), Outcome: *outcome}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: serialize payload: %w", ErrGeneration, err)
	}

	p.logger.Info(
		"payload generated",
		"form_type", formType,
		"schema", payload.SchemaVersion,
		"bytes", len(data),
	)
	return data, nil
}

func stamp(snapshot *compute.TaxSnapshot) string {
	if snapshot == nil || snapshot.ComputedAt.IsZero() {
		return "never"
	}
	return snapshot.ComputedAt.Format(time.RFC3339)
}
