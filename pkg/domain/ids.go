// Package domain holds shared domain value types.
package domain

import (
	"github.com/google/uuid"

	dErrors "academy/pkg/domain-errors"
)

// StudentID is the canonical identifier shared by every record describing one
// person. It is minted once, from the application, and propagated verbatim
// into Profile, Student, CohortEnrollment and ChapterProgress rows.
//
// Invariant: for one applicant,
// Application.ID == Profile.ID == Student.ID == enrollment/progress student_id.
type StudentID uuid.UUID

// CohortID identifies a scheduled cohort.
type CohortID uuid.UUID

// ParseStudentID constructs a StudentID from external input.
func ParseStudentID(s string) (StudentID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return StudentID(uuid.Nil), dErrors.New(dErrors.CodeValidation, "invalid application id")
	}
	return StudentID(u), nil
}

// ParseCohortID constructs a CohortID from external input.
func ParseCohortID(s string) (CohortID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return CohortID(uuid.Nil), dErrors.New(dErrors.CodeValidation, "invalid cohort id")
	}
	return CohortID(u), nil
}

func (id StudentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id StudentID) String() string { return uuid.UUID(id).String() }

func (id CohortID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CohortID) String() string { return uuid.UUID(id).String() }
