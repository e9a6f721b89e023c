// Package gateway transmits signed return envelopes to the government
// e-filing gateway and parses its responses. Failures are classified as
// retryable (network, timeout, gateway outage) or terminal (gateway-side
// validation rejection); neither mutates local state.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/veritax/veritax/internal/signing"
)

// Client submits envelopes to the filing gateway.
type Client interface {
	Submit(ctx context.Context, envelope *signing.Envelope, formType, assessmentYear string) (*Response, error)
}

// Response is the gateway's acceptance record.
type Response struct {
	AcknowledgmentNumber string  `json:"acknowledgmentNumber"`
	SubmissionToken      *string `json:"submissionToken"`
}

// Config holds gateway connection settings. The stored password is
// encrypted with the signing service's credential cipher.
type Config struct {
	BaseURL           string `toml:"base_url"`
	UserID            string `toml:"user_id"`
	EncryptedPassword string `toml:"encrypted_password"`
	Timeout           string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults and validation.
func (c *Config) Finalize() error {
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if c.UserID == "" {
		return fmt.Errorf("user_id required")
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
	if overlay.UserID != "" {
		c.UserID = overlay.UserID
	}
	if overlay.EncryptedPassword != "" {
		c.EncryptedPassword = overlay.EncryptedPassword
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

// Decryptor recovers stored gateway credentials. Implemented by the
// signing service's credential cipher.
type Decryptor interface {
	DecryptCredential(ciphertext string) (string, error)
}

type client struct {
	http     *http.Client
	baseURL  string
	timeout  time.Duration
	userID   string
	password string
	logger   *slog.Logger
}

// New creates an HTTP gateway client. The configured password is stored
// encrypted and decrypted once at construction; a credential that cannot
// be recovered fails startup rather than the first submission.
func New(cfg *Config, creds Decryptor, logger *slog.Logger) (Client, error) {
	var password string
	if cfg.EncryptedPassword != "" {
		p, err := creds.DecryptCredential(cfg.EncryptedPassword)
		if err != nil {
			return nil, fmt.Errorf("decrypt gateway password: %w", err)
		}
		password = p
	}

	return &client{
		http:     &http.Client{},
		baseURL:  cfg.BaseURL,
		timeout:  cfg.TimeoutDuration(),
		userID:   cfg.UserID,
		password: password,
		logger:   logger.With("system", "gateway"),
	}, nil
}

type submitRequest struct {
	*signing.Envelope
	FormType       string `json:"formType"`
	AssessmentYear string `json:"assessmentYear"`
}

// Submit posts the envelope with an explicit deadline. A timeout is a
// retryable failure, never a terminal rejection.
func (c *client) Submit(
	ctx context.Context,
	envelope *signing.Envelope,
	formType, assessmentYear string,
) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(submitRequest{
		Envelope:       envelope,
		FormType:       formType,
		AssessmentYear: assessmentYear,
	})
	if err != nil {
		return nil, &SubmitError{Kind: KindRetryable, Message: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.baseURL+"/filing/submit",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, &SubmitError{Kind: KindRetryable, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.password != "" {
		req.SetBasicAuth(c.userID, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("gateway unreachable", "error", err)
		return nil, &SubmitError{Kind: KindRetryable, Message: "gateway unreachable", Err: err}
	}
	defer resp.Body.Close()

	return c.parseResponse(resp)
}

func (c *client) parseResponse(resp *http.Response) (*Response, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &SubmitError{Kind: KindRetryable, Message: "read response", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var parsed Response
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, &SubmitError{Kind: KindRetryable, Message: "decode response", Err: err}
		}
		if parsed.AcknowledgmentNumber == "" {
			return nil, &SubmitError{Kind: KindRetryable, Message: "response missing acknowledgment number"}
		}
		c.logger.Info("gateway accepted submission", "acknowledgment", parsed.AcknowledgmentNumber)
		return &parsed, nil

	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &SubmitError{
			Kind:    KindRetryable,
			Message: fmt.Sprintf("gateway returned %d", resp.StatusCode),
			Body:    string(data),
		}

	case resp.StatusCode >= http.StatusBadRequest:
		// 4xx only: the gateway rejected the return itself.
		return nil, &SubmitError{
			Kind:    KindTerminal,
			Message: fmt.Sprintf("gateway rejected submission with %d", resp.StatusCode),
			Body:    string(data),
		}

	default:
		// Anything else (stray redirects, 1xx) is not a rejection verdict.
		return nil, &SubmitError{
			Kind:    KindRetryable,
			Message: fmt.Sprintf("unexpected gateway status %d", resp.StatusCode),
			Body:    string(data),
		}
	}
}
