package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrStorageUnavailable marks failures to reach the database at all, as
// opposed to a query the database rejected.
var ErrStorageUnavailable = errors.New("storage unavailable")

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// constraintKind is the driver-independent class of a constraint violation.
type constraintKind int

const (
	constraintNone constraintKind = iota
	constraintForeignKey
	constraintUnique
	constraintCheck
)

// classifyConstraint maps both pq and sqlite3 errors onto constraintKind.
func classifyConstraint(err error) constraintKind {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			return constraintForeignKey
		case "23505": // unique_violation
			return constraintUnique
		case "23514": // check_violation
			return constraintCheck
		}
		return constraintNone
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey:
			return constraintForeignKey
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return constraintUnique
		case sqlite3.ErrConstraintCheck:
			return constraintCheck
		}
	}
	return constraintNone
}

// WrapStorageError tags connection-level failures with ErrStorageUnavailable
// and leaves everything else untouched.
func WrapStorageError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return err
}

func getExecutor(db *sql.DB, exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return db
}
