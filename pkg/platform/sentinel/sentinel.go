// Package sentinel holds infrastructure fact errors. Stores and
// infrastructure layers return these (optionally wrapped) so services can
// translate them into domain errors.
//
// These represent factual states about storage, not validation failures:
//   - ErrNotFound: record does not exist in the store
//   - ErrUniqueViolation: a unique constraint rejected the write
//   - ErrNotNullViolation: a required column was missing
//   - ErrForeignKeyViolation: a referenced record does not exist
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
package sentinel

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUniqueViolation     = errors.New("unique violation")
	ErrNotNullViolation    = errors.New("not-null violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

// SQLSTATE codes emitted by postgres for the constraint classes above. The
// in-memory stores emit the same codes so error translation behaves
// identically against either backend.
const (
	SQLStateUniqueViolation     = "23505"
	SQLStateNotNullViolation    = "23502"
	SQLStateForeignKeyViolation = "23503"
)

// Violation wraps a constraint sentinel with the constraint name and SQLSTATE
// reported by the store. errors.Is against the sentinel still works through
// Unwrap; the extra fields survive for diagnostics.
type Violation struct {
	Kind       error // one of the sentinels above
	Constraint string
	SQLState   string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%v on %q (sqlstate %s)", v.Kind, v.Constraint, v.SQLState)
}

func (v *Violation) Unwrap() error { return v.Kind }

// NewViolation builds a Violation for the given sentinel kind.
func NewViolation(kind error, constraint, sqlState string) *Violation {
	return &Violation{Kind: kind, Constraint: constraint, SQLState: sqlState}
}

// ViolationConstraint returns the constraint name carried by err, if any.
func ViolationConstraint(err error) string {
	var v *Violation
	if errors.As(err, &v) {
		return v.Constraint
	}
	return ""
}

// SQLState returns the storage error code carried by err, if any.
func SQLState(err error) string {
	var v *Violation
	if errors.As(err, &v) {
		return v.SQLState
	}
	return ""
}
