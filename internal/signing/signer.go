// Package signing produces the detached digital signature the e-filing
// gateway requires over the return payload, and handles the symmetric
// encryption of gateway credentials.
package signing

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gowebpki/jcs"
	"github.com/hhrutter/pkcs7"
)

// Errors raised by signing operations.
var (
	ErrSignFailed   = errors.New("payload signing failed")
	ErrVerifyFailed = errors.New("signature verification failed")
	ErrBadKeyMatter = errors.New("invalid signing key material")
)

// Signer signs payloads and assembles gateway envelopes.
type Signer interface {
	Sign(payload []byte) (string, error)
	Verify(signature string, payload []byte) error
	BuildEnvelope(payload []byte, gatewayUserID string) (*Envelope, error)
	EncryptCredential(plaintext string) (string, error)
	DecryptCredential(ciphertext string) (string, error)
}

// Config holds signing key material locations and the credential key.
type Config struct {
	CertPath string `toml:"cert_path"`
	KeyPath  string `toml:"key_path"`
	// CredentialKey is the fixed symmetric key for gateway credential
	// encryption, hex encoded. The no-IV scheme is mandated by the
	// gateway integration; see DESIGN.md before changing it.
	CredentialKey string `toml:"credential_key"`
}

// Finalize validates the config.
func (c *Config) Finalize() error {
	if c.CertPath == "" {
		return fmt.Errorf("cert_path required")
	}
	if c.KeyPath == "" {
		return fmt.Errorf("key_path required")
	}
	if c.CredentialKey == "" {
		return fmt.Errorf("credential_key required")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.CertPath != "" {
		c.CertPath = overlay.CertPath
	}
	if overlay.KeyPath != "" {
		c.KeyPath = overlay.KeyPath
	}
	if overlay.CredentialKey != "" {
		c.CredentialKey = overlay.CredentialKey
	}
}

type service struct {
	cert          *x509.Certificate
	key           *rsa.PrivateKey
	credentialKey []byte
	logger        *slog.Logger
}

// New loads the signing certificate and private key and creates the
// signing service.
func New(cfg *Config, logger *slog.Logger) (Signer, error) {
	cert, err := loadCertificate(cfg.CertPath)
	if err != nil {
		return nil, err
	}

	key, err := loadPrivateKey(cfg.KeyPath)
	if err != nil {
		return nil, err
	}

	credentialKey, err := parseCredentialKey(cfg.CredentialKey)
	if err != nil {
		return nil, err
	}

	return &service{
		cert:          cert,
		key:           key,
		credentialKey: credentialKey,
		logger:        logger.With("system", "signing"),
	}, nil
}

// Sign canonicalizes the payload, produces a detached PKCS#7 SignedData
// container with authenticated attributes (content type, message digest,
// signing time), and returns it base64 encoded.
func (s *service) Sign(payload []byte) (string, error) {
	canonical, err := jcs.Transform(payload)
	if err != nil {
		return "", fmt.Errorf("%w: canonicalize payload: %w", ErrSignFailed, err)
	}

	signed, err := pkcs7.NewSignedData(canonical)
	if err != nil {
		return "", fmt.Errorf("%w: init signed data: %w", ErrSignFailed, err)
	}
	signed.SetDigestAlgorithm(pkcs7.OIDDigestAlgorithmSHA256)

	if err := signed.AddSigner(s.cert, s.key, pkcs7.SignerInfoConfig{}); err != nil {
		return "", fmt.Errorf("%w: add signer: %w", ErrSignFailed, err)
	}

	signed.Detach()

	der, err := signed.Finish()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSignFailed, err)
	}

	s.logger.Debug("payload signed", "payload_bytes", len(canonical), "signature_bytes", len(der))
	return base64.StdEncoding.EncodeToString(der), nil
}

// Verify parses the detached signature, verifies it cryptographically,
// and checks it covers the expected payload.
func (s *service) Verify(signature string, payload []byte) error {
	der, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: decode signature: %w", ErrVerifyFailed, err)
	}

	canonical, err := jcs.Transform(payload)
	if err != nil {
		return fmt.Errorf("%w: canonicalize payload: %w", ErrVerifyFailed, err)
	}

	p7, err := pkcs7.Parse(der)
	if err != nil {
		return fmt.Errorf("%w: parse container: %w", ErrVerifyFailed, err)
	}

	p7.Content = canonical
	if err := p7.Verify(); err != nil {
		return fmt.Errorf("%w: %w", ErrVerifyFailed, err)
	}

	return nil
}

func loadCertificate(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read certificate: %w", ErrBadKeyMatter, err)
	}

	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("%w: %s is not a PEM certificate", ErrBadKeyMatter, path)
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse certificate: %w", ErrBadKeyMatter, err)
	}
	return cert, nil
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read key: %w", ErrBadKeyMatter, err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: %s is not PEM", ErrBadKeyMatter, path)
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse key: %w", ErrBadKeyMatter, err)
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: key is not RSA", ErrBadKeyMatter)
	}
	return key, nil
}
