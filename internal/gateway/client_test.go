package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/veritax/veritax/internal/signing"
)

// staticCreds decrypts the one fixture credential.
type staticCreds struct{}

func (staticCreds) DecryptCredential(ciphertext string) (string, error) {
	if ciphertext != "enc:s3cret" {
		return "", errors.New("unknown ciphertext")
	}
	return "s3cret", nil
}

func testClient(t *testing.T, cfg *Config) Client {
	t.Helper()

	c, err := New(cfg, staticCreds{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("gateway client: %v", err)
	}
	return c
}

func plainClient(t *testing.T, baseURL, timeout string) Client {
	return testClient(t, &Config{BaseURL: baseURL, UserID: "platform", Timeout: timeout})
}

func testEnvelope() *signing.Envelope {
	return &signing.Envelope{
		Signature:     "c2ln",
		Payload:       "cGF5bG9hZA==",
		GatewayUserID: "EFUSER01",
	}
}

func TestSubmitAccepted(t *testing.T) {
	var got submitRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/filing/submit" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}

		token := "TOK-123"
		json.NewEncoder(w).Encode(Response{
			AcknowledgmentNumber: "ACK-2026-000123",
			SubmissionToken:      &token,
		})
	}))
	defer server.Close()

	resp, err := plainClient(t, server.URL, "5s").Submit(context.Background(), testEnvelope(), "ITR1", "2025-26")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if resp.AcknowledgmentNumber != "ACK-2026-000123" {
		t.Fatalf("acknowledgment = %q", resp.AcknowledgmentNumber)
	}
	if resp.SubmissionToken == nil || *resp.SubmissionToken != "TOK-123" {
		t.Fatalf("token = %v", resp.SubmissionToken)
	}

	if got.GatewayUserID != "EFUSER01" || got.FormType != "ITR1" || got.AssessmentYear != "2025-26" {
		t.Fatalf("request body = %+v", got)
	}
}

func TestSubmitServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance window", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := plainClient(t, server.URL, "5s").Submit(context.Background(), testEnvelope(), "ITR1", "2025-26")

	if !Retryable(err) {
		t.Fatalf("5xx must be retryable, got %v", err)
	}
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("want ErrGatewayUnavailable, got %v", err)
	}
}

func TestSubmitRejectionIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"DUPLICATE_FILING"}`, http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	_, err := plainClient(t, server.URL, "5s").Submit(context.Background(), testEnvelope(), "ITR1", "2025-26")

	if Retryable(err) {
		t.Fatalf("4xx must be terminal, got %v", err)
	}
	if !errors.Is(err, ErrGatewayRejected) {
		t.Fatalf("want ErrGatewayRejected, got %v", err)
	}

	var submitErr *SubmitError
	if !errors.As(err, &submitErr) {
		t.Fatalf("error does not carry the gateway body: %v", err)
	}
	if submitErr.Body == "" {
		t.Fatal("terminal rejection must preserve the gateway response body")
	}
}

func TestSubmitMissingAcknowledgmentIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := plainClient(t, server.URL, "5s").Submit(context.Background(), testEnvelope(), "ITR1", "2025-26")

	if !Retryable(err) {
		t.Fatalf("missing acknowledgment must be retryable, got %v", err)
	}
}

func TestSubmitTimeoutIsRetryable(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	_, err := plainClient(t, server.URL, "50ms").Submit(context.Background(), testEnvelope(), "ITR1", "2025-26")

	if !Retryable(err) {
		t.Fatalf("timeout must be retryable, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not enforced, waited %s", elapsed)
	}
}

func TestSubmitPresentsCredentials(t *testing.T) {
	var user, pass string
	var withAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, withAuth = r.BasicAuth()
		json.NewEncoder(w).Encode(Response{AcknowledgmentNumber: "ACK-1"})
	}))
	defer server.Close()

	c := testClient(t, &Config{
		BaseURL:           server.URL,
		UserID:            "platform",
		EncryptedPassword: "enc:s3cret",
		Timeout:           "5s",
	})

	if _, err := c.Submit(context.Background(), testEnvelope(), "ITR1", "2025-26"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !withAuth {
		t.Fatal("configured credentials were not presented")
	}
	if user != "platform" || pass != "s3cret" {
		t.Fatalf("credentials = %q/%q, want platform with the decrypted password", user, pass)
	}
}

func TestSubmitOmitsAuthWithoutPassword(t *testing.T) {
	var withAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, withAuth = r.BasicAuth()
		json.NewEncoder(w).Encode(Response{AcknowledgmentNumber: "ACK-1"})
	}))
	defer server.Close()

	if _, err := plainClient(t, server.URL, "5s").Submit(context.Background(), testEnvelope(), "ITR1", "2025-26"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if withAuth {
		t.Fatal("no credentials configured, none may be sent")
	}
}

func TestNewRejectsUndecryptablePassword(t *testing.T) {
	cfg := &Config{
		BaseURL:           "https://efiling.example.gov",
		UserID:            "platform",
		EncryptedPassword: "enc:garbage",
	}

	if _, err := New(cfg, staticCreds{}, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Fatal("undecryptable password must fail construction")
	}
}

func TestSubmitUnexpectedStatusIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	_, err := plainClient(t, server.URL, "5s").Submit(context.Background(), testEnvelope(), "ITR1", "2025-26")

	if !Retryable(err) {
		t.Fatalf("3xx must be retryable, not a rejection verdict, got %v", err)
	}
	if errors.Is(err, ErrGatewayRejected) {
		t.Fatalf("3xx must not map to a terminal rejection, got %v", err)
	}
}

func TestConfigFinalize(t *testing.T) {
	cfg := &Config{BaseURL: "https://efiling.example.gov", UserID: "platform"}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.Timeout != "60s" {
		t.Fatalf("default timeout = %q, want 60s", cfg.Timeout)
	}

	missing := &Config{UserID: "platform"}
	if err := missing.Finalize(); err == nil {
		t.Fatal("missing base_url must fail")
	}
}
