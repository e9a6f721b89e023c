package signing

import (
	"crypto/aes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"
)

// testService builds the signing service directly with a freshly
// generated key and self-signed certificate, bypassing the PEM loaders.
func testService(t *testing.T) *service {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "signing test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse certificate: %v", err)
	}

	return &service{
		cert:          cert,
		key:           key,
		credentialKey: []byte("0123456789abcdef"),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	svc := testService(t)
	payload := []byte(`{"formName":"ITR-1 SAHAJ","assessmentYear":"2025-26"}`)

	signature, err := svc.Sign(payload)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := base64.StdEncoding.DecodeString(signature); err != nil {
		t.Fatalf("signature is not base64: %v", err)
	}

	if err := svc.Verify(signature, payload); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

// Key order must not matter: the signature is computed over the
// canonical form, so a reordered but equivalent document verifies.
func TestVerifyCanonicalEquivalence(t *testing.T) {
	svc := testService(t)

	signature, err := svc.Sign([]byte(`{"a":1,"b":2}`))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if err := svc.Verify(signature, []byte(`{"b":2,"a":1}`)); err != nil {
		t.Fatalf("reordered equivalent payload must verify: %v", err)
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	svc := testService(t)

	signature, err := svc.Sign([]byte(`{"taxLiability":54600}`))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	err = svc.Verify(signature, []byte(`{"taxLiability":0}`))
	if !errors.Is(err, ErrVerifyFailed) {
		t.Fatalf("tampered payload must fail verification, got %v", err)
	}
}

func TestSignRejectsMalformedJSON(t *testing.T) {
	svc := testService(t)

	if _, err := svc.Sign([]byte(`{not json`)); !errors.Is(err, ErrSignFailed) {
		t.Fatalf("want ErrSignFailed, got %v", err)
	}
}

func TestBuildEnvelope(t *testing.T) {
	svc := testService(t)
	payload := []byte(`{"formName":"ITR-2"}`)

	envelope, err := svc.BuildEnvelope(payload, "EFUSER01")
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}

	if envelope.GatewayUserID != "EFUSER01" {
		t.Fatalf("gateway user = %q", envelope.GatewayUserID)
	}

	decoded, err := base64.StdEncoding.DecodeString(envelope.Payload)
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	if string(decoded) != string(payload) {
		t.Fatal("envelope payload does not round-trip")
	}

	if err := svc.Verify(envelope.Signature, payload); err != nil {
		t.Fatalf("envelope signature does not verify: %v", err)
	}
}

func TestBuildEnvelopeRequiresGatewayUser(t *testing.T) {
	svc := testService(t)

	if _, err := svc.BuildEnvelope([]byte(`{}`), ""); err == nil {
		t.Fatal("missing gateway user must be rejected")
	}
}

func TestParseCredentialKey(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		wantErr bool
	}{
		{"aes-128", "30313233343536373839616263646566", false},
		{"not hex", "zz", true},
		{"wrong length", "0102", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseCredentialKey(tc.encoded)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestCredentialRoundTrip(t *testing.T) {
	svc := testService(t)

	for _, secret := range []string{"hunter2", "", "exactly-sixteen!", "a longer credential spanning multiple cipher blocks"} {
		encrypted, err := svc.EncryptCredential(secret)
		if err != nil {
			t.Fatalf("encrypt %q: %v", secret, err)
		}

		decrypted, err := svc.DecryptCredential(encrypted)
		if err != nil {
			t.Fatalf("decrypt %q: %v", secret, err)
		}
		if decrypted != secret {
			t.Fatalf("round trip = %q, want %q", decrypted, secret)
		}
	}
}

func TestDecryptCredentialRejectsGarbage(t *testing.T) {
	svc := testService(t)

	// A block whose plaintext ends in 0x00 carries invalid padding.
	block, err := aes.NewCipher(svc.credentialKey)
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	zeroPadded := make([]byte, block.BlockSize())
	block.Encrypt(zeroPadded, make([]byte, block.BlockSize()))

	tests := []struct {
		name       string
		ciphertext string
	}{
		{"not base64", "%%%"},
		{"not block aligned", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"bad padding", base64.StdEncoding.EncodeToString(zeroPadded)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.DecryptCredential(tc.ciphertext); !errors.Is(err, ErrCredentialCipher) {
				t.Fatalf("want ErrCredentialCipher, got %v", err)
			}
		})
	}
}
