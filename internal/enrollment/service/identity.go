package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"academy/internal/enrollment/models"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/email"
	"academy/pkg/platform/audit"
	"academy/pkg/platform/sentinel"
)

// resolvedProfile is the outcome of profile resolution: the canonical profile
// for the applicant's email and whether this call created it.
type resolvedProfile struct {
	profile *models.Profile
	created bool
}

// resolveOrCreateProfile finds the profile owning the application's email, or
// creates one keyed by the application ID. The profiles email unique
// constraint is the arbiter under concurrency: lookup, re-check immediately
// before insert, insert, and on a unique violation re-read the winner. Both
// racing callers end up holding the same single profile.
func (s *Service) resolveOrCreateProfile(ctx context.Context, app *models.Application) (resolvedProfile, error) {
	address := email.Normalize(app.Email)
	if !email.Valid(address) {
		return resolvedProfile{}, dErrors.New(dErrors.CodeValidation, "application email is missing or malformed")
	}
	if strings.TrimSpace(app.FullName) == "" {
		return resolvedProfile{}, dErrors.New(dErrors.CodeValidation, "application full name is required")
	}

	existing, err := s.stores.Profiles.FindByEmail(ctx, address)
	switch {
	case err == nil:
		return s.vetExistingProfile(existing)
	case !errors.Is(err, sentinel.ErrNotFound):
		return resolvedProfile{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up profile by email")
	}

	// Double-check right before the insert: a concurrent approval may have
	// created the profile since the first read, and catching it here avoids
	// burning an insert on the common race.
	existing, err = s.stores.Profiles.FindByEmail(ctx, address)
	switch {
	case err == nil:
		return s.vetExistingProfile(existing)
	case !errors.Is(err, sentinel.ErrNotFound):
		return resolvedProfile{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up profile by email")
	}

	now := time.Now().UTC()
	profile := &models.Profile{
		ID:       app.ID,
		Email:    address,
		FullName: app.FullName,
		Phone:    app.Phone,
		Country:  app.Country,
		City:     app.City,
		Status:   models.ProfileStatusPendingPasswordSetup,
		// The application form verifies the address before submission, so a
		// profile born from an approval starts verified. The gate above only
		// guards pre-existing unverified accounts.
		EmailVerifiedAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if app.PreferredCohortID != nil {
		// Set the cohort only when it still exists; a dangling reference is
		// caught later by the enrollment step, not here.
		if _, cerr := s.stores.Cohorts.FindByID(ctx, *app.PreferredCohortID); cerr == nil {
			cohortID := *app.PreferredCohortID
			profile.CohortID = &cohortID
		}
	}

	err = s.stores.Profiles.Create(ctx, profile)
	if err == nil {
		s.logAudit(ctx, audit.EventProfileCreated, profile.ID, "email", profile.Email)
		return resolvedProfile{profile: profile, created: true}, nil
	}

	switch {
	case errors.Is(err, sentinel.ErrUniqueViolation):
		// Lost the race. The winner's row is the canonical profile; adopt it.
		if s.metrics != nil {
			s.metrics.ProfileCreationRaces.Inc()
		}
		s.logger.InfoContext(ctx, "profile insert lost race, adopting winner",
			"application_id", app.ID.String(),
			"constraint", sentinel.ViolationConstraint(err),
		)
		winner, rerr := s.stores.Profiles.FindByEmail(ctx, address)
		if rerr != nil {
			// The id may collide while the email does not (a stale retry of
			// the same application); the row keyed by our id is then the one
			// we created earlier.
			winner, rerr = s.stores.Profiles.FindByID(ctx, app.ID)
		}
		if rerr != nil {
			return resolvedProfile{}, dErrors.Wrap(err, dErrors.CodeConflict, "profile already exists but could not be re-read")
		}
		return s.vetExistingProfile(winner)

	case errors.Is(err, sentinel.ErrNotNullViolation):
		return resolvedProfile{}, dErrors.Wrap(err, dErrors.CodeValidation, "application is missing a required profile field")

	case errors.Is(err, sentinel.ErrForeignKeyViolation):
		return resolvedProfile{}, dErrors.Wrap(err, dErrors.CodeInvalidReference, "preferred cohort does not exist")

	default:
		return resolvedProfile{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create profile")
	}
}

// vetExistingProfile applies the email-verification gate to a profile that
// already existed before this approval.
func (s *Service) vetExistingProfile(profile *models.Profile) (resolvedProfile, error) {
	if !profile.VerifiedOrGrandfathered(s.cfg.VerificationCutoff) {
		return resolvedProfile{}, dErrors.New(dErrors.CodeEmailNotVerified, "email address has not been verified")
	}
	return resolvedProfile{profile: profile, created: false}, nil
}
