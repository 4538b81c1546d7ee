package service

import (
	"context"
	"errors"
	"time"

	"academy/internal/enrollment/models"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/audit"
	"academy/pkg/platform/sentinel"
	"academy/pkg/secrets"
)

const minPasswordLength = 8

// CompletePasswordSetup sets the initial password on a profile created by
// approval and activates it. Setting a password twice is a conflict; password
// changes go through a separate credentialed flow.
func (s *Service) CompletePasswordSetup(ctx context.Context, profileID id.StudentID, password string) error {
	if len(password) < minPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}

	profile, err := s.stores.Profiles.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	if profile.HasPassword() {
		return dErrors.New(dErrors.CodeConflict, "password has already been set")
	}

	hash, err := secrets.Hash(password)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	profile.PasswordHash = hash
	profile.Status = models.ProfileStatusActive
	profile.UpdatedAt = time.Now().UTC()
	if err := s.stores.Profiles.Update(ctx, profile); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save password")
	}

	s.logAudit(ctx, audit.EventPasswordSetupComplete, profile.ID, "email", profile.Email)
	return nil
}
