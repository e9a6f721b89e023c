package filings

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/veritax/veritax/pkg/handlers"
	"github.com/veritax/veritax/pkg/middleware"
	"github.com/veritax/veritax/pkg/pagination"
	"github.com/veritax/veritax/pkg/routes"
)

// Handler provides HTTP endpoints for filing queries and capability
// inspection. Submission itself lives in the submission module.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "filings"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for filing endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/filings",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/actions", Handler: h.Actions},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
		},
	}
}

// List returns a paginated list of filings with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single filing by its UUID path parameter, scoped to the
// authenticated owner unless the actor holds a professional role.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	actor, ok := actorFrom(r)
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrNotFound)
		return
	}

	var filing *Filing
	if actor.Role.Professional() {
		filing, err = h.sys.Find(r.Context(), id)
	} else {
		filing, err = h.sys.FindForUser(r.Context(), id, actor.ID)
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, filing)
}

// ActionsResponse reports the capability set for the actor over a filing.
type ActionsResponse struct {
	State   State    `json:"state"`
	Actions []Action `json:"actions"`
}

// Actions returns the allowed actions for the authenticated actor on the
// filing in its current lifecycle state.
func (h *Handler) Actions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	actor, ok := actorFrom(r)
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrNotFound)
		return
	}

	filing, err := h.sys.FindForUser(r.Context(), id, actor.ID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ActionsResponse{
		State:   filing.State,
		Actions: AllowedActions(filing.State, actor),
	})
}

// Search accepts a JSON body with pagination and filter criteria and returns matching filings.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func actorFrom(r *http.Request) (Actor, bool) {
	a, ok := middleware.ActorFrom(r.Context())
	if !ok {
		return Actor{}, false
	}
	return Actor{ID: a.ID, Role: Role(a.Role)}, true
}
