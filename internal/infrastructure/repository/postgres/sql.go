package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/riskibarqy/puntodeoro/internal/usecase"
)

const (
	defaultOpTimeout    = 10 * time.Second
	uniqueViolationCode = "23505"
)

// Options shared by every repository in this package.
type Options struct {
	OpTimeout time.Duration
}

func (o Options) timeout() time.Duration {
	if o.OpTimeout <= 0 {
		return defaultOpTimeout
	}
	return o.OpTimeout
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

// isBindParameterMismatch matches the error a transaction-pooling proxy
// returns when a cached unnamed statement no longer fits the arguments.
func isBindParameterMismatch(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "bind message supplies") && strings.Contains(msg, "requires")
}

func isUnnamedPreparedStatementMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unnamed prepared statement does not exist") || strings.Contains(msg, "(26000)")
}

// runStatement runs fn under the per-operation timeout, retrying once when a
// pooled connection lost its prepared statement.
func runStatement(ctx context.Context, opts Options, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout())
	defer cancel()

	err := fn(ctx)
	if isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err) {
		err = fn(ctx)
	}
	return err
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", usecase.ErrPersistence, op, err)
}
