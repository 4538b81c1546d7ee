package memory

import (
	"context"

	"academy/internal/enrollment/models"
	id "academy/pkg/domain"
	"academy/pkg/platform/sentinel"
)

// ProfileStore persists profiles in memory. Profiles carry two unique
// constraints — the primary key and the normalized email — and both are
// emulated here because the identity resolver's race handling depends on
// which one fired.
type ProfileStore struct {
	db *DB
}

func (s *ProfileStore) FindByID(_ context.Context, profileID id.StudentID) (*models.Profile, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	profile, ok := s.db.profiles[profileID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneProfile(profile), nil
}

func (s *ProfileStore) FindByEmail(_ context.Context, email string) (*models.Profile, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	email = normalizeEmail(email)
	for _, profile := range s.db.profiles {
		if profile.Email == email {
			return cloneProfile(profile), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *ProfileStore) Create(_ context.Context, profile *models.Profile) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if profile.Email == "" {
		return notNullViolation("profiles.email")
	}
	if profile.FullName == "" {
		return notNullViolation("profiles.full_name")
	}
	if _, exists := s.db.profiles[profile.ID]; exists {
		return uniqueViolation("profiles_pkey")
	}
	email := normalizeEmail(profile.Email)
	for _, existing := range s.db.profiles {
		if existing.Email == email {
			return uniqueViolation("profiles_email_key")
		}
	}
	if !s.db.cohortExists(profile.CohortID) {
		return fkViolation("profiles_cohort_id_fkey")
	}
	stored := *cloneProfile(*profile)
	stored.Email = email
	s.db.profiles[profile.ID] = stored
	return nil
}

func (s *ProfileStore) Update(_ context.Context, profile *models.Profile) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, exists := s.db.profiles[profile.ID]; !exists {
		return sentinel.ErrNotFound
	}
	if !s.db.cohortExists(profile.CohortID) {
		return fkViolation("profiles_cohort_id_fkey")
	}
	stored := *cloneProfile(*profile)
	stored.Email = normalizeEmail(profile.Email)
	s.db.profiles[profile.ID] = stored
	return nil
}

func cloneProfile(profile models.Profile) *models.Profile {
	clone := profile
	clone.CohortID = cloneCohortID(profile.CohortID)
	if profile.EmailVerifiedAt != nil {
		t := *profile.EmailVerifiedAt
		clone.EmailVerifiedAt = &t
	}
	return &clone
}
