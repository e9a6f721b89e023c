// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, signing, external
// clients) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/veritax/veritax/internal/compute"
	"github.com/veritax/veritax/internal/config"
	"github.com/veritax/veritax/internal/gateway"
	"github.com/veritax/veritax/internal/signing"
	"github.com/veritax/veritax/pkg/database"
	"github.com/veritax/veritax/pkg/lifecycle"
	"github.com/veritax/veritax/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, payload archive storage, signing, and the
// external computation and gateway clients.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Signer    signing.Signer
	Gateway   gateway.Client
	Compute   compute.Client

	// Verifier is nil when token verification is disabled.
	Verifier *oidc.IDTokenVerifier
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	signer, err := signing.New(&cfg.Signing, logger)
	if err != nil {
		return nil, fmt.Errorf("signing init failed: %w", err)
	}

	gw, err := gateway.New(&cfg.Gateway, signer, logger)
	if err != nil {
		return nil, fmt.Errorf("gateway init failed: %w", err)
	}

	verifier, err := newVerifier(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("auth init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Signer:    signer,
		Gateway:   gw,
		Compute:   compute.New(&cfg.Compute, logger),
		Verifier:  verifier,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database and storage hooks are registered for startup and shutdown coordination.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}

// newVerifier performs OIDC discovery against the configured issuer.
func newVerifier(cfg *config.AuthConfig) (*oidc.IDTokenVerifier, error) {
	if !cfg.IsEnabled() {
		return nil, nil
	}

	provider, err := oidc.NewProvider(context.Background(), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	return provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}), nil
}
