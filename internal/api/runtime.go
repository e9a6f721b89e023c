package api

import (
	"github.com/veritax/veritax/internal/config"
	"github.com/veritax/veritax/internal/infrastructure"
	"github.com/veritax/veritax/internal/submission"
	"github.com/veritax/veritax/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Submission submission.Config

	// GatewayUserID is the platform's gateway account, used when a
	// taxpayer has no gateway identity of their own.
	GatewayUserID string
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Signer:    infra.Signer,
			Gateway:   infra.Gateway,
			Compute:   infra.Compute,
			Verifier:  infra.Verifier,
		},
		Pagination:    cfg.API.Pagination,
		Submission:    cfg.Submission,
		GatewayUserID: cfg.Gateway.UserID,
	}
}
