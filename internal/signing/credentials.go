package signing

import (
	"bytes"
	"crypto/aes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrCredentialCipher marks a failed credential encrypt/decrypt.
var ErrCredentialCipher = errors.New("credential cipher failed")

// Gateway credentials are encrypted with a fixed key and no
// initialization vector (AES in ECB mode with PKCS#7 padding). The
// scheme is inherited from the gateway integration contract and is
// deliberately not replaced here; DESIGN.md records the open question.

func parseCredentialKey(encoded string) ([]byte, error) {
	key, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: credential key is not hex: %w", ErrBadKeyMatter, err)
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	}
	return nil, fmt.Errorf("%w: credential key must be 16, 24, or 32 bytes", ErrBadKeyMatter)
}

// EncryptCredential encrypts a gateway credential and returns it base64
// encoded.
func (s *service) EncryptCredential(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.credentialKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCredentialCipher, err)
	}

	padded := padPKCS7([]byte(plaintext), block.BlockSize())
	out := make([]byte, len(padded))
	for i := 0; i < len(padded); i += block.BlockSize() {
		block.Encrypt(out[i:], padded[i:])
	}

	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptCredential reverses EncryptCredential.
func (s *service) DecryptCredential(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: decode: %w", ErrCredentialCipher, err)
	}

	block, err := aes.NewCipher(s.credentialKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCredentialCipher, err)
	}

	if len(data) == 0 || len(data)%block.BlockSize() != 0 {
		return "", fmt.Errorf("%w: ciphertext is not block aligned", ErrCredentialCipher)
	}

	out := make([]byte, len(data))
	for i := 0; i < len(data); i += block.BlockSize() {
		block.Decrypt(out[i:], data[i:])
	}

	plain, err := unpadPKCS7(out, block.BlockSize())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCredentialCipher, err)
	}
	return string(plain), nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(pad)}, pad)...)
}

func unpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty plaintext")
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > blockSize || pad > len(data) {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-pad], nil
}
