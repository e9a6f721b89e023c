package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/veritax/veritax/internal/compute"
	"github.com/veritax/veritax/internal/gateway"
	"github.com/veritax/veritax/internal/signing"
	"github.com/veritax/veritax/internal/submission"
	"github.com/veritax/veritax/pkg/database"
	"github.com/veritax/veritax/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvVeritaxEnv             = "VERITAX_ENV"
	EnvVeritaxShutdownTimeout = "VERITAX_SHUTDOWN_TIMEOUT"
	EnvVeritaxVersion         = "VERITAX_VERSION"

	EnvGatewayBaseURL  = "VERITAX_GATEWAY_BASE_URL"
	EnvGatewayUserID   = "VERITAX_GATEWAY_USER_ID"
	EnvGatewayPassword = "VERITAX_GATEWAY_ENCRYPTED_PASSWORD"
	EnvGatewayTimeout  = "VERITAX_GATEWAY_TIMEOUT"

	EnvSigningCertPath      = "VERITAX_SIGNING_CERT_PATH"
	EnvSigningKeyPath       = "VERITAX_SIGNING_KEY_PATH"
	EnvSigningCredentialKey = "VERITAX_SIGNING_CREDENTIAL_KEY"

	EnvComputeBaseURL = "VERITAX_COMPUTE_BASE_URL"
	EnvComputeTimeout = "VERITAX_COMPUTE_TIMEOUT"

	EnvDefaultAssessmentYear = "VERITAX_DEFAULT_ASSESSMENT_YEAR"
)

var databaseEnv = &database.Env{
	Host:            "VERITAX_DB_HOST",
	Port:            "VERITAX_DB_PORT",
	Name:            "VERITAX_DB_NAME",
	User:            "VERITAX_DB_USER",
	Password:        "VERITAX_DB_PASSWORD",
	SSLMode:         "VERITAX_DB_SSL_MODE",
	MaxOpenConns:    "VERITAX_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "VERITAX_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "VERITAX_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "VERITAX_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "VERITAX_STORAGE_CONTAINER_NAME",
	ConnectionString: "VERITAX_STORAGE_CONNECTION_STRING",
}

// Config is the root configuration for the Veritax filing service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	API             APIConfig         `toml:"api"`
	Auth            AuthConfig        `toml:"auth"`
	Gateway         gateway.Config    `toml:"gateway"`
	Signing         signing.Config    `toml:"signing"`
	Compute         compute.Config    `toml:"compute"`
	Submission      submission.Config `toml:"submission"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the VERITAX_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvVeritaxEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Gateway.Merge(&overlay.Gateway)
	c.Signing.Merge(&overlay.Signing)
	c.Compute.Merge(&overlay.Compute)
	c.Submission.Merge(&overlay.Submission)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Gateway.Finalize(); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	if err := c.Signing.Finalize(); err != nil {
		return fmt.Errorf("signing: %w", err)
	}
	if err := c.Compute.Finalize(); err != nil {
		return fmt.Errorf("compute: %w", err)
	}
	if err := c.Submission.Finalize(); err != nil {
		return fmt.Errorf("submission: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvVeritaxShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvVeritaxVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvGatewayBaseURL); v != "" {
		c.Gateway.BaseURL = v
	}
	if v := os.Getenv(EnvGatewayUserID); v != "" {
		c.Gateway.UserID = v
	}
	if v := os.Getenv(EnvGatewayPassword); v != "" {
		c.Gateway.EncryptedPassword = v
	}
	if v := os.Getenv(EnvGatewayTimeout); v != "" {
		c.Gateway.Timeout = v
	}
	if v := os.Getenv(EnvSigningCertPath); v != "" {
		c.Signing.CertPath = v
	}
	if v := os.Getenv(EnvSigningKeyPath); v != "" {
		c.Signing.KeyPath = v
	}
	if v := os.Getenv(EnvSigningCredentialKey); v != "" {
		c.Signing.CredentialKey = v
	}
	if v := os.Getenv(EnvComputeBaseURL); v != "" {
		c.Compute.BaseURL = v
	}
	if v := os.Getenv(EnvComputeTimeout); v != "" {
		c.Compute.Timeout = v
	}
	if v := os.Getenv(EnvDefaultAssessmentYear); v != "" {
		c.Submission.DefaultAssessmentYear = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvVeritaxEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
