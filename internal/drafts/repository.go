package drafts

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/veritax/veritax/pkg/repository"
)

// System defines the public contract for draft domain operations.
type System interface {
	// Find looks up a draft without ownership scoping. Reserved for
	// professional roles acting on a client's filing.
	Find(ctx context.Context, id uuid.UUID) (*Draft, error)
	FindForUser(ctx context.Context, id, userID uuid.UUID) (*Draft, error)
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a draft repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "drafts"),
	}
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Draft, error) {
	q := `
		SELECT id, filing_id, user_id, assessment_year, form_data, created_at, updated_at
		FROM drafts
		WHERE id = $1`

	d, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanDraft)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &d, nil
}

func (r *repo) FindForUser(ctx context.Context, id, userID uuid.UUID) (*Draft, error) {
	q := `
		SELECT id, filing_id, user_id, assessment_year, form_data, created_at, updated_at
		FROM drafts
		WHERE id = $1 AND user_id = $2`

	d, err := repository.QueryOne(ctx, r.db, q, []any{id, userID}, scanDraft)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &d, nil
}

func scanDraft(s repository.Scanner) (Draft, error) {
	var d Draft
	err := s.Scan(
		&d.ID,
		&d.FilingID,
		&d.UserID,
		&d.AssessmentYear,
		&d.FormDataJSON,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return d, err
}
