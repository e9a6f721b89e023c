package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/veritax/veritax/pkg/handlers"
	"github.com/veritax/veritax/pkg/routes"
	"github.com/veritax/veritax/pkg/storage"
)

// payloadHandler serves archived submission payloads for audit review.
type payloadHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newPayloadHandler(store storage.System, logger *slog.Logger) *payloadHandler {
	return &payloadHandler{
		store:  store,
		logger: logger.With("handler", "payloads"),
	}
}

func (h *payloadHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/payloads",
		Routes: []routes.Route{
			{Method: "HEAD", Pattern: "/{key...}", Handler: h.exists},
			{Method: "GET", Pattern: "/{key...}", Handler: h.download},
		},
	}
}

func (h *payloadHandler) exists(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	ok, err := h.store.Exists(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *payloadHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}
