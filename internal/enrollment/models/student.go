package models

import (
	"time"

	id "academy/pkg/domain"
)

// StudentStatus is the enrollment state of a student record.
type StudentStatus string

const (
	StudentStatusApplied  StudentStatus = "applied"
	StudentStatusEnrolled StudentStatus = "enrolled"
	StudentStatusAlumni   StudentStatus = "alumni"
)

// Student is the authoritative enrollment record. Progress counters are owned
// by unrelated student activity; the approval workflow must never regress
// them, which is why upserts preserve existing counters.
//
// Invariants:
//   - ID and ProfileID both equal the canonical student identifier
//   - counters only ever increase through course activity; approval writes
//     them only when inserting a brand-new row (zeroed)
type Student struct {
	ID                   id.StudentID  `json:"id"`
	ProfileID            id.StudentID  `json:"profile_id"`
	FullName             string        `json:"full_name"`
	Email                string        `json:"email"`
	Phone                string        `json:"phone"`
	Country              string        `json:"country"`
	City                 string        `json:"city"`
	CohortID             *id.CohortID  `json:"cohort_id,omitempty"`
	Status               StudentStatus `json:"status"`
	ProgressPercent      int           `json:"progress_percent"`
	AssignmentsCompleted int           `json:"assignments_completed"`
	ProjectsCompleted    int           `json:"projects_completed"`
	LiveSessionsAttended int           `json:"live_sessions_attended"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// ApplyContactUpdate refreshes contact and cohort fields from an application
// while leaving progress counters untouched.
func (s *Student) ApplyContactUpdate(app *Application, now time.Time) {
	s.FullName = app.FullName
	s.Email = app.Email
	s.Phone = app.Phone
	s.Country = app.Country
	s.City = app.City
	if app.PreferredCohortID != nil {
		cohortID := *app.PreferredCohortID
		s.CohortID = &cohortID
	}
	s.Status = StudentStatusEnrolled
	s.UpdatedAt = now
}

// NewStudentFromApplication builds a fresh Student row for a first-time
// approval, counters zeroed.
func NewStudentFromApplication(app *Application, profileID id.StudentID, now time.Time) *Student {
	s := &Student{
		ID:        profileID,
		ProfileID: profileID,
		CreatedAt: now,
	}
	s.ApplyContactUpdate(app, now)
	return s
}
