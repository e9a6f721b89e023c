package filings

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/veritax/veritax/pkg/pagination"
	"github.com/veritax/veritax/pkg/query"
	"github.com/veritax/veritax/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a filing repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "filings"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Filing], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "AssessmentYear", "AcknowledgmentNumber")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count filings: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanFiling)
	if err != nil {
		return nil, fmt.Errorf("query filings: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Filing, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	f, err := repository.QueryOne(ctx, r.db, q, args, scanFiling)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &f, nil
}

func (r *repo) FindForUser(ctx context.Context, id, userID uuid.UUID) (*Filing, error) {
	qb := query.NewBuilder(projection)
	qb.WhereEquals("ID", &id).WhereEquals("UserID", &userID)
	q, args := qb.Build()

	f, err := repository.QueryOne(ctx, r.db, q, args, scanFiling)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &f, nil
}

// ClaimForSubmission atomically advances the filing to in_progress,
// guarded by the submittable state set for the actor's role. The
// compare-and-swap on state guarantees at most one concurrent submission
// attempt per filing: a second attempt finds the row already in
// in_progress and receives ErrClaimConflict. Returns the state the claim
// was taken from so a retryable failure can release back to it.
func (r *repo) ClaimForSubmission(ctx context.Context, id uuid.UUID, actor Actor) (State, error) {
	prior, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (State, error) {
		var raw string
		err := tx.QueryRowContext(
			ctx,
			"SELECT state FROM filings WHERE id = $1 FOR UPDATE",
			id,
		).Scan(&raw)
		if err != nil {
			return "", repository.MapError(err, ErrNotFound, ErrNotFound)
		}

		current, err := ParseState(raw)
		if err != nil {
			return "", err
		}

		if current == StateInProgress {
			return "", ErrClaimConflict
		}
		if current.Terminal() {
			return "", fmt.Errorf("%w: %w", ErrAlreadyFiled, &LockedError{
				State:           current,
				Allowed:         AllowedActions(current, actor),
				SubmittableFrom: SubmittableStates(actor.Role),
			})
		}
		if err := AssertSubmittable(current, actor); err != nil {
			return "", err
		}

		_, err = tx.ExecContext(
			ctx,
			"UPDATE filings SET state = $2, status = $3, updated_at = now() WHERE id = $1",
			id, string(StateInProgress), StateInProgress.StatusLabel(),
		)
		if err != nil {
			return "", fmt.Errorf("advance to in_progress: %w", err)
		}

		return current, nil
	})
	if err != nil {
		return "", err
	}

	r.logger.Info("submission claim taken", "filing", id, "from_state", prior)
	return prior, nil
}

// ReleaseClaim restores the filing to the state the claim was taken from
// after a retryable failure, so the caller may attempt again.
func (r *repo) ReleaseClaim(ctx context.Context, id uuid.UUID, prior State) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		`UPDATE filings SET state = $2, status = $3, updated_at = now()
		 WHERE id = $1 AND state = $4`,
		id, string(prior), prior.StatusLabel(), string(StateInProgress),
	)
	if err != nil {
		return fmt.Errorf("release claim: %w", repository.MapError(err, ErrNotFound, ErrNotFound))
	}

	r.logger.Info("submission claim released", "filing", id, "state", prior)
	return nil
}

// MarkFailed moves an in-progress filing to the recoverable failed state
// after a terminal gateway rejection.
func (r *repo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		`UPDATE filings SET state = $2, status = $3, updated_at = now()
		 WHERE id = $1 AND state = $4`,
		id, string(StateFailed), StateFailed.StatusLabel(), string(StateInProgress),
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", repository.MapError(err, ErrNotFound, ErrNotFound))
	}

	r.logger.Warn("filing marked failed", "filing", id, "reason", reason)
	return nil
}

// MarkFiled records the accepted submission: terminal lifecycle state,
// timestamps, acting user, verification choice, the archived payload key,
// the snapshot, and the gateway's acknowledgment.
func (r *repo) MarkFiled(ctx context.Context, cmd MarkFiledCommand) (*Filing, error) {
	args := []any{
		cmd.FilingID,
		string(StateSucceeded),
		StateSucceeded.StatusLabel(),
		cmd.TaxLiability,
		cmd.RefundAmount,
		cmd.Regime,
		cmd.SnapshotJSON,
		cmd.PayloadKey,
		cmd.AcknowledgmentNumber,
		cmd.SubmissionToken,
		cmd.Verification.Method,
		cmd.Verification.Token,
		cmd.FiledBy,
		cmd.SubmittedAt,
		time.Now(),
		string(StateInProgress),
	}

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Filing, error) {
		return repository.QueryOne(ctx, tx, markFiledQuery, args, scanFiling)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}

	r.logger.Info(
		"filing recorded",
		"filing", f.ID,
		"acknowledgment", cmd.AcknowledgmentNumber,
	)
	return &f, nil
}

const markFiledQuery = `
	UPDATE filings
	SET state = $2,
	    status = $3,
	    tax_liability = $4,
	    refund_amount = $5,
	    regime = $6,
	    snapshot = $7,
	    payload_key = $8,
	    acknowledgment_number = $9,
	    submission_token = $10,
	    verification_method = $11,
	    verification_token = $12,
	    filed_by = $13,
	    submitted_at = $14,
	    filed_at = $15,
	    updated_at = now()
	WHERE id = $1 AND state = $16
	RETURNING id, user_id, form_type, assessment_year, state, status,
	          tax_liability, refund_amount, regime, snapshot, payload_key,
	          acknowledgment_number, submission_token, verification_method,
	          verification_token, filed_by, submitted_at, filed_at,
	          created_at, updated_at`
