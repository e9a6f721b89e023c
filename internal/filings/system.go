package filings

import (
	"context"

	"github.com/google/uuid"

	"github.com/veritax/veritax/pkg/pagination"
)

// System defines the public contract for filing domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Filing], error)

	Find(ctx context.Context, id uuid.UUID) (*Filing, error)
	FindForUser(ctx context.Context, id, userID uuid.UUID) (*Filing, error)

	// ClaimForSubmission takes the per-filing submission claim; see the
	// repository implementation for the concurrency contract.
	ClaimForSubmission(ctx context.Context, id uuid.UUID, actor Actor) (State, error)
	ReleaseClaim(ctx context.Context, id uuid.UUID, prior State) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	MarkFiled(ctx context.Context, cmd MarkFiledCommand) (*Filing, error)
}
