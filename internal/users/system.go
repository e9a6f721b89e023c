package users

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for user domain operations.
type System interface {
	Find(ctx context.Context, id uuid.UUID) (*User, error)
	VerificationProfile(ctx context.Context, id uuid.UUID) (*Verification, error)
}
