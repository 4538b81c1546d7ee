package models

import (
	"time"

	id "academy/pkg/domain"
)

// ProfileStatus is the auth-facing lifecycle state of a profile.
type ProfileStatus string

const (
	ProfileStatusPendingPasswordSetup ProfileStatus = "pending_password_setup"
	ProfileStatusActive               ProfileStatus = "active"
)

// Profile is the display/auth-facing record for a person. It is a read model
// mirroring the Student record: Student is authoritative for name, phone,
// country, city and cohort, and the mirror is refreshed after every Student
// write (see the service's syncProfileFromStudent).
//
// Invariants:
//   - ID equals the canonical student identifier
//   - Email is stored normalized (lower-cased, trimmed) and unique
//   - created at most once per email; never deleted by the enrollment
//     workflow
type Profile struct {
	ID              id.StudentID  `json:"id"`
	Email           string        `json:"email"`
	FullName        string        `json:"full_name"`
	Phone           string        `json:"phone"`
	Country         string        `json:"country"`
	City            string        `json:"city"`
	CohortID        *id.CohortID  `json:"cohort_id,omitempty"`
	Status          ProfileStatus `json:"status"`
	EmailVerifiedAt *time.Time    `json:"email_verified_at,omitempty"`
	PasswordHash    string        `json:"-"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// HasPassword reports whether the person finished password setup.
func (p *Profile) HasPassword() bool { return p.PasswordHash != "" }

// VerifiedOrGrandfathered reports whether the profile may be approved under
// the email-verification policy. Profiles created before the cutoff predate
// the verification feature and are treated as verified regardless of the
// flag.
func (p *Profile) VerifiedOrGrandfathered(cutoff time.Time) bool {
	if p.EmailVerifiedAt != nil {
		return true
	}
	return p.CreatedAt.Before(cutoff)
}
