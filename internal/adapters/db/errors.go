package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Failure classes reported by the accessor. Every error returned by Database
// and Conn matches exactly one of the first three with errors.Is.
var (
	ErrPoolInitialization = errors.New("pool initialization failed")
	ErrQueryExecution     = errors.New("query execution failed")
	ErrPoolShutdown       = errors.New("pool shutdown failed")

	// ErrPoolClosed is the cause attached to operations attempted after Close.
	ErrPoolClosed = errors.New("connection pool is closed")
)

// Error carries the failure class, the operation that failed and the
// underlying driver error.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the class and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func initError(op string, err error) error {
	return &Error{Kind: ErrPoolInitialization, Op: op, Err: err}
}

// queryError wraps err as a query execution failure. Errors that are already
// classified keep their class and outermost operation.
func queryError(op string, err error) error {
	var dbErr *Error
	if errors.As(err, &dbErr) {
		return err
	}
	return &Error{Kind: ErrQueryExecution, Op: op, Err: err}
}

func shutdownError(err error) error {
	return &Error{Kind: ErrPoolShutdown, Op: "close", Err: err}
}

// SQLState returns the Postgres error code carried by err, or "" when err
// did not come from the server.
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// Postgres error codes the harness cares about.
const (
	SQLStateUniqueViolation  = "23505"
	SQLStateCheckViolation   = "23514"
	SQLStateNotNullViolation = "23502"
	SQLStateUndefinedTable   = "42P01"
)
