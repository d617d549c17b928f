package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrInvalidTenant indicates a missing or malformed tenant identifier.
	ErrInvalidTenant = errors.New("records: invalid tenant")
	// ErrNotFound indicates the tenant has no backing account.
	ErrNotFound = errors.New("records: not found")
	// ErrTransport indicates the backing store could not be reached or failed.
	ErrTransport = errors.New("records: transport error")
	// ErrInvalidRecord indicates a row that failed boundary validation.
	ErrInvalidRecord = errors.New("records: invalid record")
)

// TransportError carries the failed kind and the number of attempts made.
type TransportError struct {
	Kind     Kind
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("records: fetch %s failed after %d attempts: %v", e.Kind, e.Attempts, e.Err)
	}
	return fmt.Sprintf("records: fetch %s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is matches ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// RecordError identifies the row that failed validation.
type RecordError struct {
	Kind Kind
	ID   uuid.UUID
	Err  error
}

func (e *RecordError) Error() string {
	if e.ID == uuid.Nil {
		return fmt.Sprintf("records: invalid %s row: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("records: invalid %s %s: %v", e.Kind, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Is matches ErrInvalidRecord.
func (e *RecordError) Is(target error) bool { return target == ErrInvalidRecord }

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ErrTransport)
}

// classify turns a raw driver error into the package taxonomy. Constraint
// and syntax errors reported by Postgres are programming errors and are not
// retried; everything else on the wire is treated as transport failure.
func classify(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrTransport) || errors.Is(err, ErrInvalidRecord) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidTenant) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && !transientSQLState(pgErr.Code) {
		return fmt.Errorf("records: query %s: %w", kind, err)
	}
	return &TransportError{Kind: kind, Attempts: 1, Err: err}
}

// transientSQLState reports SQLSTATE classes that may succeed on retry:
// connection exceptions, insufficient resources, operator intervention and
// serialization failures.
func transientSQLState(code string) bool {
	if len(code) < 2 {
		return false
	}
	switch code[:2] {
	case "08", "53", "57":
		return true
	}
	return code == "40001" || code == "40P01"
}
