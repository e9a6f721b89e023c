package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvAuthEnabled  = "VERITAX_AUTH_ENABLED"
	EnvAuthIssuer   = "VERITAX_AUTH_ISSUER"
	EnvAuthClientID = "VERITAX_AUTH_CLIENT_ID"
)

// AuthConfig holds OIDC token verification settings. When disabled the
// API trusts actor headers, which is only acceptable for local
// development.
type AuthConfig struct {
	Enabled  *bool  `toml:"enabled"`
	Issuer   string `toml:"issuer"`
	ClientID string `toml:"client_id"`
}

// IsEnabled reports whether token verification is on. Defaults to true.
func (c *AuthConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Finalize applies environment variable overrides and validation.
func (c *AuthConfig) Finalize() error {
	c.loadEnv()

	if c.IsEnabled() {
		if c.Issuer == "" {
			return fmt.Errorf("issuer required when auth enabled")
		}
		if c.ClientID == "" {
			return fmt.Errorf("client_id required when auth enabled")
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *AuthConfig) Merge(overlay *AuthConfig) {
	if overlay.Enabled != nil {
		c.Enabled = overlay.Enabled
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
}

func (c *AuthConfig) loadEnv() {
	if v := os.Getenv(EnvAuthEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = &enabled
		}
	}
	if v := os.Getenv(EnvAuthIssuer); v != "" {
		c.Issuer = v
	}
	if v := os.Getenv(EnvAuthClientID); v != "" {
		c.ClientID = v
	}
}
