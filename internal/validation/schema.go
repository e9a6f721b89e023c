package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/veritax/veritax/internal/forms"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var schemaFiles = map[forms.FormType]string{
	forms.ITR1: "schemas/itr1.json",
	forms.ITR2: "schemas/itr2.json",
	forms.ITR3: "schemas/itr3.json",
	forms.ITR4: "schemas/itr4.json",
}

// compileSchemas loads the embedded per-form JSON Schemas.
func compileSchemas() (map[forms.FormType]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	// Register every schema before compiling: the forms cross-reference
	// shared definitions ($defs in itr1.json).
	for _, path := range schemaFiles {
		data, err := schemaFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", path, err)
		}
		if err := compiler.AddResource("veritax://"+path, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", path, err)
		}
	}

	compiled := make(map[forms.FormType]*jsonschema.Schema, len(schemaFiles))
	for formType, path := range schemaFiles {
		schema, err := compiler.Compile("veritax://" + path)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", path, err)
		}
		compiled[formType] = schema
	}
	return compiled, nil
}

// validateSchema runs the form's JSON Schema over the form data and folds
// every leaf violation into the outcome.
func validateSchema(schema *jsonschema.Schema, form *forms.FormData) (*Outcome, error) {
	outcome := NewOutcome()

	// The schema validates the generic JSON shape, so round-trip the
	// typed form through encoding/json first.
	raw, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("encode form data: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode form data: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, fmt.Errorf("schema validation: %w", err)
		}
		for _, issue := range flattenSchemaError(ve) {
			outcome.AddError(issue.Field, "SCHEMA", issue.Message)
		}
	}

	return outcome, nil
}

func flattenSchemaError(ve *jsonschema.ValidationError) []Issue {
	if len(ve.Causes) == 0 {
		field := ve.InstanceLocation
		if field == "" {
			field = "/"
		}
		return []Issue{{Field: field, Message: ve.Message}}
	}

	var issues []Issue
	for _, cause := range ve.Causes {
		issues = append(issues, flattenSchemaError(cause)...)
	}
	return issues
}
