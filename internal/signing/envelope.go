package signing

import (
	"encoding/base64"
	"fmt"
)

// Envelope is the wire artifact transmitted to the filing gateway: the
// detached signature, the serialized payload, and the gateway account
// submitting it. Both fields are base64 encoded per the gateway contract.
type Envelope struct {
	Signature     string `json:"signature"`
	Payload       string `json:"payload"`
	GatewayUserID string `json:"gatewayUserId"`
}

// BuildEnvelope signs the payload and assembles the gateway envelope.
func (s *service) BuildEnvelope(payload []byte, gatewayUserID string) (*Envelope, error) {
	if gatewayUserID == "" {
		return nil, fmt.Errorf("%w: missing gateway user id", ErrSignFailed)
	}

	signature, err := s.Sign(payload)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Signature:     signature,
		Payload:       base64.StdEncoding.EncodeToString(payload),
		GatewayUserID: gatewayUserID,
	}, nil
}
