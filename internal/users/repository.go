package users

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/veritax/veritax/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a user repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "users"),
	}
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*User, error) {
	q := `
		SELECT id, email, name, pan, pan_verified, gateway_user_id, created_at, updated_at
		FROM users
		WHERE id = $1`

	u, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanUser)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &u, nil
}

// VerificationProfile aggregates across all of the user's bank accounts
// and income statements: one verified primary account or one linked
// statement satisfies its flag regardless of how many sibling rows exist.
func (r *repo) VerificationProfile(ctx context.Context, id uuid.UUID) (*Verification, error) {
	q := `
		SELECT u.pan_verified,
		       EXISTS (
		           SELECT 1 FROM bank_accounts b
		           WHERE b.user_id = u.id AND b.is_primary AND b.verified
		       ),
		       EXISTS (
		           SELECT 1 FROM income_statements s
		           WHERE s.user_id = u.id AND s.linked
		       )
		FROM users u
		WHERE u.id = $1`

	v, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanVerification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &v, nil
}

func scanUser(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PAN,
		&u.PANVerified,
		&u.GatewayUserID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func scanVerification(s repository.Scanner) (Verification, error) {
	var v Verification
	err := s.Scan(
		&v.IdentityVerified,
		&v.BankVerified,
		&v.IncomeStatementLinked,
	)
	return v, err
}
