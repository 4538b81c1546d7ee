// Package memory provides map-backed enrollment stores. They emulate the
// unique, not-null and foreign-key constraints of the postgres schema —
// including the SQLSTATEs — so services and tests observe the same failure
// modes against either backend.
//
// All entity stores share one DB so foreign-key checks can see sibling
// tables, mirroring a single database. Each operation takes the lock once;
// there is no cross-operation atomicity, exactly like the real store.
package memory

import (
	"strings"
	"sync"

	"academy/internal/enrollment/models"
	id "academy/pkg/domain"
	"academy/pkg/platform/sentinel"
)

type enrollmentKey struct {
	cohortID  id.CohortID
	studentID id.StudentID
}

type chapterKey struct {
	studentID id.StudentID
	chapter   int
}

// DB holds every entity table. Construct one per process (or per test) and
// derive the entity stores from it.
type DB struct {
	mu           sync.RWMutex
	applications map[id.StudentID]models.Application
	profiles     map[id.StudentID]models.Profile
	students     map[id.StudentID]models.Student
	cohorts      map[id.CohortID]models.Cohort
	enrollments  map[enrollmentKey]models.CohortEnrollment
	chapters     map[chapterKey]models.ChapterProgress
}

func NewDB() *DB {
	return &DB{
		applications: make(map[id.StudentID]models.Application),
		profiles:     make(map[id.StudentID]models.Profile),
		students:     make(map[id.StudentID]models.Student),
		cohorts:      make(map[id.CohortID]models.Cohort),
		enrollments:  make(map[enrollmentKey]models.CohortEnrollment),
		chapters:     make(map[chapterKey]models.ChapterProgress),
	}
}

func (db *DB) Applications() *ApplicationStore        { return &ApplicationStore{db: db} }
func (db *DB) Profiles() *ProfileStore                { return &ProfileStore{db: db} }
func (db *DB) Students() *StudentStore                { return &StudentStore{db: db} }
func (db *DB) Cohorts() *CohortStore                  { return &CohortStore{db: db} }
func (db *DB) Enrollments() *EnrollmentStore          { return &EnrollmentStore{db: db} }
func (db *DB) ChapterProgress() *ChapterProgressStore { return &ChapterProgressStore{db: db} }

func uniqueViolation(constraint string) error {
	return sentinel.NewViolation(sentinel.ErrUniqueViolation, constraint, sentinel.SQLStateUniqueViolation)
}

func notNullViolation(column string) error {
	return sentinel.NewViolation(sentinel.ErrNotNullViolation, column, sentinel.SQLStateNotNullViolation)
}

func fkViolation(constraint string) error {
	return sentinel.NewViolation(sentinel.ErrForeignKeyViolation, constraint, sentinel.SQLStateForeignKeyViolation)
}

// cohortExists implements the FK checks; callers must hold the lock.
func (db *DB) cohortExists(cohortID *id.CohortID) bool {
	if cohortID == nil {
		return true
	}
	_, ok := db.cohorts[*cohortID]
	return ok
}

func cloneCohortID(cohortID *id.CohortID) *id.CohortID {
	if cohortID == nil {
		return nil
	}
	c := *cohortID
	return &c
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
