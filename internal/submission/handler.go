package submission

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/veritax/veritax/internal/drafts"
	"github.com/veritax/veritax/internal/filings"
	"github.com/veritax/veritax/pkg/handlers"
	"github.com/veritax/veritax/pkg/middleware"
	"github.com/veritax/veritax/pkg/routes"
)

// Handler exposes the submission endpoint.
type Handler struct {
	orchestrator *Orchestrator
	logger       *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(orchestrator *Orchestrator, logger *slog.Logger) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		logger:       logger.With("handler", "submission"),
	}
}

// Routes returns the route group definition for submission endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/filings",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/{draftID}/submit", Handler: h.Submit},
		},
	}
}

// Submit runs one submission attempt for the draft's filing.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	draftID, err := uuid.Parse(r.PathValue("draftID"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, drafts.ErrNotFound)
		return
	}

	a, ok := middleware.ActorFrom(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, drafts.ErrNotFound)
		return
	}
	actor := filings.Actor{ID: a.ID, Role: filings.Role(a.Role)}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.orchestrator.Submit(r.Context(), draftID, actor, req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
