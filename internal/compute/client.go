package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/veritax/veritax/internal/forms"
)

// ErrComputeFailed indicates the computation service could not produce a
// snapshot. Submission treats this as fatal: no payload may be generated
// from a missing or stale computation.
var ErrComputeFailed = errors.New("tax computation failed")

// Client computes a fresh TaxSnapshot for a return.
type Client interface {
	Compute(ctx context.Context, form *forms.FormData, assessmentYear string) (*TaxSnapshot, error)
}

// Config holds computation service connection settings.
type Config struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults and validation.
func (c *Config) Finalize() error {
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

type client struct {
	http    *http.Client
	baseURL string
	logger  *slog.Logger
}

// New creates an HTTP computation client.
func New(cfg *Config, logger *slog.Logger) Client {
	return &client{
		http:    &http.Client{Timeout: cfg.TimeoutDuration()},
		baseURL: cfg.BaseURL,
		logger:  logger.With("system", "compute"),
	}
}

type computeRequest struct {
	FormData       *forms.FormData `json:"form_data"`
	AssessmentYear string          `json:"assessment_year"`
}

func (c *client) Compute(ctx context.Context, form *forms.FormData, assessmentYear string) (*TaxSnapshot, error) {
	body, err := json.Marshal(computeRequest{FormData: form, AssessmentYear: assessmentYear})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", ErrComputeFailed, err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.baseURL+"/v1/compute",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrComputeFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrComputeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: service returned %d", ErrComputeFailed, resp.StatusCode)
	}

	var snapshot TaxSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrComputeFailed, err)
	}

	if snapshot.ComputedAt.IsZero() {
		snapshot.ComputedAt = time.Now()
	}
	if snapshot.ComputationVersion == "" {
		return nil, fmt.Errorf("%w: response missing computation version", ErrComputeFailed)
	}

	c.logger.Info(
		"computation complete",
		"version", snapshot.ComputationVersion,
		"liability", snapshot.TaxLiability,
		"regime", snapshot.Regime,
	)

	return &snapshot, nil
}
