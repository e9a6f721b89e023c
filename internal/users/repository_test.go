package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func testRepo(t *testing.T) (System, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return New(db, slog.New(slog.NewTextHandler(io.Discard, nil))), mock
}

// The profile flags must aggregate over every bank account and income
// statement the user holds, so the query pushes the OR into the database
// with EXISTS subqueries and yields exactly one row per user. A linked
// statement counts no matter how many unlinked siblings precede it.
func TestVerificationProfileAggregates(t *testing.T) {
	repo, mock := testRepo(t)
	id := uuid.New()

	query := regexp.QuoteMeta(`
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
		WHERE u.id = $1`)

	mock.ExpectQuery(query).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(
			[]string{"pan_verified", "bank_verified", "income_statement_linked"},
		).AddRow(true, true, true))

	v, err := repo.VerificationProfile(context.Background(), id)
	if err != nil {
		t.Fatalf("verification profile: %v", err)
	}

	if !v.IdentityVerified || !v.BankVerified || !v.IncomeStatementLinked {
		t.Fatalf("profile = %+v, want all flags set", v)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestVerificationProfileNotFound(t *testing.T) {
	repo, mock := testRepo(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT u.pan_verified").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"pan_verified", "bank_verified", "income_statement_linked"}))

	_, err := repo.VerificationProfile(context.Background(), id)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFind(t *testing.T) {
	repo, mock := testRepo(t)
	id := uuid.New()

	now := time.Now()
	mock.ExpectQuery("SELECT id, email, name, pan, pan_verified, gateway_user_id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "name", "pan", "pan_verified", "gateway_user_id", "created_at", "updated_at",
		}).AddRow(id, "a.kumar@example.in", "A Kumar", "ABCDE1234F", true, "EFUSER01", now, now))

	u, err := repo.Find(context.Background(), id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u.GatewayUserID != "EFUSER01" {
		t.Fatalf("gateway user = %q", u.GatewayUserID)
	}
}
