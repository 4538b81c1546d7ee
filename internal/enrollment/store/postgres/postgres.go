// Package postgres implements the enrollment stores on postgres. Constraint
// failures are translated into sentinel violations carrying the constraint
// name and SQLSTATE so services translate them the same way as the in-memory
// backend.
package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"academy/pkg/platform/sentinel"
)

// Stores bundles the postgres-backed entity stores over one pool.
type Stores struct {
	Applications *ApplicationStore
	Profiles     *ProfileStore
	Students     *StudentStore
	Cohorts      *CohortStore
	Enrollments  *EnrollmentStore
	Chapters     *ChapterProgressStore
}

// Open connects to postgres and returns the store bundle plus the raw pool
// for sharing with the audit outbox.
func Open(databaseURL string) (*sql.DB, *Stores, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, NewStores(db), nil
}

// NewStores builds the store bundle over an existing pool.
func NewStores(db *sql.DB) *Stores {
	return &Stores{
		Applications: &ApplicationStore{db: db},
		Profiles:     &ProfileStore{db: db},
		Students:     &StudentStore{db: db},
		Cohorts:      &CohortStore{db: db},
		Enrollments:  &EnrollmentStore{db: db},
		Chapters:     &ChapterProgressStore{db: db},
	}
}

// translateError maps driver errors to sentinel facts. Unknown errors pass
// through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case sentinel.SQLStateUniqueViolation:
		return sentinel.NewViolation(sentinel.ErrUniqueViolation, pqErr.Constraint, string(pqErr.Code))
	case sentinel.SQLStateNotNullViolation:
		constraint := pqErr.Column
		if pqErr.Table != "" {
			constraint = pqErr.Table + "." + pqErr.Column
		}
		return sentinel.NewViolation(sentinel.ErrNotNullViolation, constraint, string(pqErr.Code))
	case sentinel.SQLStateForeignKeyViolation:
		return sentinel.NewViolation(sentinel.ErrForeignKeyViolation, pqErr.Constraint, string(pqErr.Code))
	}
	return err
}
