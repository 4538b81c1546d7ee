package models

import (
	"time"

	id "academy/pkg/domain"
)

// Cohort is a scheduled batch the student enrolls into.
type Cohort struct {
	ID        id.CohortID `json:"id"`
	Name      string      `json:"name"`
	Capacity  int         `json:"capacity"`
	StartsAt  time.Time   `json:"starts_at"`
	CreatedAt time.Time   `json:"created_at"`
}

// CohortEnrollment joins a student to a cohort. The (CohortID, StudentID)
// pair is unique; absence of the pair is the existence check used by the
// approval saga.
type CohortEnrollment struct {
	CohortID   id.CohortID  `json:"cohort_id"`
	StudentID  id.StudentID `json:"student_id"`
	EnrolledAt time.Time    `json:"enrolled_at"`
}

// ChapterProgress is a per-chapter access-gate row. Chapter 1 is granted
// unconditionally on approval; later chapters are granted by course
// progression (out of scope here). The (StudentID, Chapter) pair is unique
// and a duplicate insert means the chapter was already unlocked.
type ChapterProgress struct {
	StudentID  id.StudentID `json:"student_id"`
	Chapter    int          `json:"chapter"`
	Unlocked   bool         `json:"unlocked"`
	UnlockedAt time.Time    `json:"unlocked_at"`
}

// FirstChapter is the chapter unlocked at approval time.
const FirstChapter = 1
