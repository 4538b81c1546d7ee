package models

import (
	"time"

	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
)

// ApplicationStatus is the lifecycle state of an enrollment application.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Application is a prospective student's submitted enrollment request.
//
// Invariants:
//   - ID is the canonical student identifier: it is copied verbatim into the
//     Profile, Student, CohortEnrollment and ChapterProgress rows created on
//     approval
//   - Status transitions: pending → approved, pending → rejected, nothing
//     else; approved and rejected are terminal
//   - ProfileID is set exactly once, by approval, and always equals ID
//
// The application form (out of scope here) creates rows in pending; only the
// approval and rejection workflows mutate them afterwards.
type Application struct {
	ID                id.StudentID      `json:"id"`
	FullName          string            `json:"full_name"`
	Email             string            `json:"email"`
	Phone             string            `json:"phone"`
	Country           string            `json:"country"`
	City              string            `json:"city"`
	PreferredCohortID *id.CohortID      `json:"preferred_cohort_id,omitempty"`
	Status            ApplicationStatus `json:"status"`
	ProfileID         *id.StudentID     `json:"profile_id,omitempty"`
	ApprovedBy        string            `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time        `json:"approved_at,omitempty"`
	RejectedReason    string            `json:"rejected_reason,omitempty"`
	RejectedAt        *time.Time        `json:"rejected_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// IsTerminal reports whether the application reached a final state.
func (a *Application) IsTerminal() bool {
	return a.Status == ApplicationStatusApproved || a.Status == ApplicationStatusRejected
}

// CanFinalize checks that the application is still pending. It returns the
// terminal-state domain error matching the current status so callers report
// "already approved" and "already rejected" distinctly.
func (a *Application) CanFinalize() error {
	switch a.Status {
	case ApplicationStatusApproved:
		return dErrors.New(dErrors.CodeAlreadyApproved, "application has already been approved")
	case ApplicationStatusRejected:
		return dErrors.New(dErrors.CodeAlreadyRejected, "application has already been rejected")
	}
	return nil
}

// ApplyApproval transitions the application to approved. This is the commit
// point of the approval saga; call CanFinalize first.
func (a *Application) ApplyApproval(profileID id.StudentID, approvedBy string, now time.Time) {
	a.Status = ApplicationStatusApproved
	a.ProfileID = &profileID
	a.ApprovedBy = approvedBy
	a.ApprovedAt = &now
}

// ApplyRejection transitions the application to rejected. Call CanFinalize
// first.
func (a *Application) ApplyRejection(reason string, now time.Time) {
	a.Status = ApplicationStatusRejected
	a.RejectedReason = reason
	a.RejectedAt = &now
}
