// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/veritax/veritax/internal/config"
	"github.com/veritax/veritax/internal/filings"
	"github.com/veritax/veritax/internal/infrastructure"
	"github.com/veritax/veritax/pkg/middleware"
	"github.com/veritax/veritax/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, err
	}

	specBytes, err := buildSpec(cfg)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime, specBytes)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.MaxBytes(cfg.API.MaxUploadSizeBytes()))

	if runtime.Verifier != nil {
		m.Use(middleware.Auth(runtime.Verifier))
	} else {
		m.Use(middleware.DevActor(string(filings.RoleTaxpayer)))
	}

	return m, nil
}
