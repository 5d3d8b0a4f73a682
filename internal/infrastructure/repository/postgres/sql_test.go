package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/riskibarqy/puntodeoro/internal/usecase"
)

func TestIsBindParameterMismatch(t *testing.T) {
	t.Run("matches bind mismatch error", func(t *testing.T) {
		err := errors.New("pq: bind message supplies 2 parameters, but prepared statement \"\" requires 1 (08P01)")
		if !isBindParameterMismatch(err) {
			t.Fatalf("expected true for bind mismatch error")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		err := errors.New("pq: relation notified does not exist")
		if isBindParameterMismatch(err) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestIsUnnamedPreparedStatementMissing(t *testing.T) {
	if !isUnnamedPreparedStatementMissing(errors.New("pq: unnamed prepared statement does not exist (26000)")) {
		t.Fatalf("expected true for statement missing error")
	}
	if isUnnamedPreparedStatementMissing(errors.New("pq: relation favorites does not exist")) {
		t.Fatalf("expected false for unrelated error")
	}
	if isUnnamedPreparedStatementMissing(nil) {
		t.Fatalf("expected false for nil")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert favorite: %w", &pq.Error{Code: "23505"})
	if !isUniqueViolation(wrapped) {
		t.Fatalf("expected wrapped 23505 to be a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatalf("foreign key violation must not count as duplicate")
	}
	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
}

func TestRunStatementRetriesOnceOnStaleStatement(t *testing.T) {
	calls := 0
	err := runStatement(context.Background(), Options{}, func(ctx context.Context) error {
		calls++
		if _, ok := ctx.Deadline(); !ok {
			t.Fatalf("expected statement context to carry a deadline")
		}
		if calls == 1 {
			return errors.New("pq: unnamed prepared statement does not exist (26000)")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRunStatementAppliesTimeout(t *testing.T) {
	err := runStatement(context.Background(), Options{OpTimeout: 5 * time.Millisecond}, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestPersistenceErrorWrapsSentinel(t *testing.T) {
	err := persistenceError("mark notified", errors.New("connection refused"))
	if !errors.Is(err, usecase.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}
