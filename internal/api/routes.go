package api

import (
	"net/http"

	"github.com/veritax/veritax/pkg/openapi"
	"github.com/veritax/veritax/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
	specBytes []byte,
) {
	routes.Register(
		mux,
		domain.Filings.Handler().Routes(),
		domain.Submission.Handler().Routes(),
		newPayloadHandler(runtime.Storage, runtime.Logger).routes(),
	)

	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))
}
