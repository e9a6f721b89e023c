package api

import (
	"github.com/veritax/veritax/internal/config"
	"github.com/veritax/veritax/pkg/openapi"
)

// buildSpec assembles the OpenAPI document served at /openapi.json.
func buildSpec(cfg *config.Config) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"Filing": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                    {Type: "string", Format: "uuid"},
				"user_id":               {Type: "string", Format: "uuid"},
				"form_type":             {Type: "string", Enum: []any{"ITR1", "ITR2", "ITR3", "ITR4"}},
				"assessment_year":       {Type: "string", Example: "2025-26"},
				"state":                 {Type: "string"},
				"status":                {Type: "string"},
				"tax_liability":         {Type: "number"},
				"refund_amount":         {Type: "number"},
				"acknowledgment_number": {Type: "string"},
				"submitted_at":          {Type: "string", Format: "date-time"},
				"filed_at":              {Type: "string", Format: "date-time"},
			},
		},
		"SubmitRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"assessment_year": {Type: "string", Description: "Overrides the draft's stored assessment year"},
				"verification": {
					Type:     "object",
					Required: []string{"method"},
					Properties: map[string]*openapi.Schema{
						"method": {Type: "string", Example: "aadhaar_otp"},
						"token":  {Type: "string"},
					},
				},
			},
		},
		"SubmitResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"filing":                openapi.SchemaRef("Filing"),
				"acknowledgment_number": {Type: "string"},
				"submission_token":      {Type: "string"},
				"confidence":            {Type: "object"},
				"advisor":               {Type: "object"},
				"signals":               {Type: "array", Items: &openapi.Schema{Type: "object"}},
			},
		},
		"Actions": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"state":   {Type: "string"},
				"actions": {Type: "array", Items: &openapi.Schema{Type: "string"}},
			},
		},
	})

	spec.Paths["/filings"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List filings",
			Tags:    []string{"filings"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("page", "integer", "Page number", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
				openapi.QueryParam("state", "string", "Filter by lifecycle state", false),
				openapi.QueryParam("form_type", "string", "Filter by form type", false),
				openapi.QueryParam("assessment_year", "string", "Filter by assessment year", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated filings", "Filing"),
			},
		},
	}

	spec.Paths["/filings/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a filing",
			Tags:       []string{"filings"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Filing identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Filing", "Filing"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/filings/{id}/actions"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Allowed actions for the caller on a filing",
			Tags:       []string{"filings"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Filing identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Actions", "Actions"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/filings/{draftID}/submit"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Submit a return",
			Description: "Runs one submission attempt for the draft's filing: validation, fresh computation, advisory scoring, payload generation, signing, and gateway transmission.",
			Tags:        []string{"submission"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("draftID", "Draft identifier")},
			RequestBody: openapi.RequestBodyJSON("SubmitRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Submission outcome", "SubmitResult"),
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}

	return openapi.MarshalJSON(spec)
}
