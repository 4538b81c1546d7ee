package service

import (
	"context"
	"errors"
	"time"

	"academy/internal/enrollment/models"
	"academy/internal/notifier"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/audit"
	"academy/pkg/platform/sentinel"
)

// ApproveRequest approves one pending application.
type ApproveRequest struct {
	ApplicationID id.StudentID
	// ApprovedBy is the admin recorded on the application. Defaults to the
	// authenticated actor when empty.
	ApprovedBy string
}

// ApproveResult is the structured outcome of an approval. EmailSent and
// EmailError report the best-effort notification; they never affect whether
// the approval itself succeeded.
type ApproveResult struct {
	ProfileID          id.StudentID
	IsExistingProfile  bool
	NeedsPasswordSetup bool
	EmailSent          bool
	EmailError         string
}

// approvalState carries the records accumulated by the pre-commit steps into
// the commit and the trailing notification.
type approvalState struct {
	app      *models.Application
	resolved resolvedProfile
	student  *models.Student
}

// Approve runs the approval saga. The Application status write is the commit
// point: everything before it aborts on failure and leaves the application
// pending (partial Profile/Student rows are safe, a retry resumes through the
// existing-record paths); everything after it is capture-and-continue.
func (s *Service) Approve(ctx context.Context, req ApproveRequest) (ApproveResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "enrollment.Approve")
	defer span.End()

	state, err := s.prepareApproval(ctx, req)
	if err != nil {
		return ApproveResult{}, err
	}
	if err := s.commitApproval(ctx, state, req.ApprovedBy); err != nil {
		return ApproveResult{}, err
	}

	result := ApproveResult{
		ProfileID:          state.resolved.profile.ID,
		IsExistingProfile:  !state.resolved.created,
		NeedsPasswordSetup: !state.resolved.profile.HasPassword(),
	}
	result.EmailSent, result.EmailError = s.notifyApproved(ctx, state)

	if s.metrics != nil {
		s.metrics.ApplicationsApproved.Inc()
		s.metrics.ObserveApproval(start)
	}
	s.logAudit(ctx, audit.EventApplicationApproved, state.resolved.profile.ID,
		"subject", state.app.ID.String(),
		"email", state.resolved.profile.Email,
	)
	return result, nil
}

// prepareApproval runs every step before the commit point. Any error here
// aborts the approval with the application still pending.
func (s *Service) prepareApproval(ctx context.Context, req ApproveRequest) (*approvalState, error) {
	state := &approvalState{}

	if err := s.step(ctx, "load_application", func(ctx context.Context) error {
		app, err := s.GetApplication(ctx, req.ApplicationID)
		if err != nil {
			return err
		}
		if err := app.CanFinalize(); err != nil {
			return err
		}
		state.app = app
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.step(ctx, "resolve_profile", func(ctx context.Context) error {
		resolved, err := s.resolveOrCreateProfile(ctx, state.app)
		if err != nil {
			return err
		}
		state.resolved = resolved
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.step(ctx, "upsert_student", func(ctx context.Context) error {
		student, err := s.upsertStudent(ctx, state.app, state.resolved.profile.ID)
		if err != nil {
			return err
		}
		state.student = student
		return nil
	}); err != nil {
		return nil, err
	}

	// Mirror refresh is non-critical: the student row is authoritative and a
	// stale profile self-heals on the next write.
	_ = s.step(ctx, "sync_profile", func(ctx context.Context) error {
		if err := s.syncProfileFromStudent(ctx, state.resolved.profile, state.student); err != nil {
			s.logger.WarnContext(ctx, "profile mirror sync failed",
				"student_id", state.student.ID.String(), "error", err)
			return err
		}
		return nil
	})

	if state.student.CohortID != nil {
		if err := s.step(ctx, "ensure_cohort_enrollment", func(ctx context.Context) error {
			return s.ensureCohortEnrollment(ctx, *state.student.CohortID, state.student.ID)
		}); err != nil {
			return nil, err
		}
	}

	// Duplicate unlocks are success; other failures are warnings because the
	// chapter tables may not be provisioned in every environment.
	_ = s.step(ctx, "unlock_first_chapter", func(ctx context.Context) error {
		if err := s.unlockFirstChapter(ctx, state.student.ID); err != nil {
			s.logger.WarnContext(ctx, "chapter unlock failed",
				"student_id", state.student.ID.String(), "error", err)
			return err
		}
		return nil
	})

	if err := s.step(ctx, "verify_profile", func(ctx context.Context) error {
		_, err := s.stores.Profiles.FindByID(ctx, state.resolved.profile.ID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				s.logger.ErrorContext(ctx, "profile missing before application commit",
					"profile_id", state.resolved.profile.ID.String())
				return dErrors.New(dErrors.CodeIntegrity, "profile record missing after resolution")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify profile")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return state, nil
}

// commitApproval writes the terminal application state. This is the single
// write that makes the approval externally observable.
func (s *Service) commitApproval(ctx context.Context, state *approvalState, approvedBy string) error {
	return s.step(ctx, "commit_application", func(ctx context.Context) error {
		if approvedBy == "" {
			approvedBy = "system"
		}
		state.app.ApplyApproval(state.resolved.profile.ID, approvedBy, time.Now().UTC())
		if err := s.stores.Applications.Update(ctx, state.app); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark application approved")
		}
		return nil
	})
}

// upsertStudent creates or refreshes the student record. Existing progress
// counters are never written by this path.
func (s *Service) upsertStudent(ctx context.Context, app *models.Application, profileID id.StudentID) (*models.Student, error) {
	now := time.Now().UTC()

	student, err := s.stores.Students.FindByID(ctx, profileID)
	switch {
	case err == nil:
		student.ApplyContactUpdate(app, now)
		if uerr := s.stores.Students.Update(ctx, student); uerr != nil {
			return nil, s.translateStudentWrite(uerr)
		}
		return student, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up student")
	}

	student = models.NewStudentFromApplication(app, profileID, now)
	cerr := s.stores.Students.Create(ctx, student)
	if cerr == nil {
		s.logAudit(ctx, audit.EventStudentEnrolled, student.ID, "email", student.Email)
		return student, nil
	}
	if errors.Is(cerr, sentinel.ErrUniqueViolation) {
		// A concurrent approval inserted the row between our read and write;
		// re-read it and apply the contact update on top.
		existing, rerr := s.stores.Students.FindByID(ctx, profileID)
		if rerr != nil {
			return nil, dErrors.Wrap(cerr, dErrors.CodeConflict, "student already exists but could not be re-read")
		}
		existing.ApplyContactUpdate(app, now)
		if uerr := s.stores.Students.Update(ctx, existing); uerr != nil {
			return nil, s.translateStudentWrite(uerr)
		}
		return existing, nil
	}
	return nil, s.translateStudentWrite(cerr)
}

func (s *Service) translateStudentWrite(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrForeignKeyViolation):
		return dErrors.Wrap(err, dErrors.CodeInvalidReference, "student references a cohort that does not exist")
	case errors.Is(err, sentinel.ErrNotNullViolation):
		return dErrors.Wrap(err, dErrors.CodeValidation, "student record is missing a required field")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write student record")
	}
}

// syncProfileFromStudent refreshes the profile mirror after a student write.
// Status flips to active only once a password hash exists.
func (s *Service) syncProfileFromStudent(ctx context.Context, profile *models.Profile, student *models.Student) error {
	profile.FullName = student.FullName
	profile.Phone = student.Phone
	profile.Country = student.Country
	profile.City = student.City
	if student.CohortID != nil {
		cohortID := *student.CohortID
		profile.CohortID = &cohortID
	}
	if profile.HasPassword() {
		profile.Status = models.ProfileStatusActive
	}
	profile.UpdatedAt = time.Now().UTC()
	return s.stores.Profiles.Update(ctx, profile)
}

// ensureCohortEnrollment makes the (cohort, student) membership row exist.
// Capacity is computed for visibility on every new enrollment; it blocks the
// approval only when enforcement is switched on, since admins are allowed to
// override capacity by default.
func (s *Service) ensureCohortEnrollment(ctx context.Context, cohortID id.CohortID, studentID id.StudentID) error {
	cohort, err := s.stores.Cohorts.FindByID(ctx, cohortID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeInvalidReference, "cohort no longer exists")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up cohort")
	}

	if _, err := s.stores.Enrollments.Find(ctx, cohortID, studentID); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up cohort enrollment")
	}

	if cohort.Capacity > 0 {
		count, cerr := s.stores.Enrollments.CountByCohort(ctx, cohortID)
		if cerr != nil {
			return dErrors.Wrap(cerr, dErrors.CodeInternal, "failed to count cohort enrollments")
		}
		seatsLeft := cohort.Capacity - count
		if s.metrics != nil {
			s.metrics.CohortSeatsRemaining.WithLabelValues(cohortID.String()).Set(float64(seatsLeft))
		}
		if seatsLeft <= 0 {
			if s.cfg.EnforceCohortCapacity {
				return dErrors.New(dErrors.CodeConflict, "cohort is at capacity")
			}
			s.logger.WarnContext(ctx, "enrolling past cohort capacity",
				"cohort_id", cohortID.String(), "capacity", cohort.Capacity, "enrolled", count)
		}
	}

	enrollment := &models.CohortEnrollment{
		CohortID:   cohortID,
		StudentID:  studentID,
		EnrolledAt: time.Now().UTC(),
	}
	if err := s.stores.Enrollments.Create(ctx, enrollment); err != nil {
		if errors.Is(err, sentinel.ErrUniqueViolation) {
			// Concurrent approval enrolled the student first.
			return nil
		}
		if errors.Is(err, sentinel.ErrForeignKeyViolation) {
			return dErrors.Wrap(err, dErrors.CodeInvalidReference, "cohort no longer exists")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create cohort enrollment")
	}
	return nil
}

// unlockFirstChapter grants chapter 1 access. A duplicate row means the
// chapter was already unlocked by an earlier attempt.
func (s *Service) unlockFirstChapter(ctx context.Context, studentID id.StudentID) error {
	if _, err := s.stores.Chapters.Find(ctx, studentID, models.FirstChapter); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}

	progress := &models.ChapterProgress{
		StudentID:  studentID,
		Chapter:    models.FirstChapter,
		Unlocked:   true,
		UnlockedAt: time.Now().UTC(),
	}
	if err := s.stores.Chapters.Create(ctx, progress); err != nil {
		if errors.Is(err, sentinel.ErrUniqueViolation) {
			return nil
		}
		return err
	}
	s.logAudit(ctx, audit.EventChapterUnlocked, studentID, "chapter", "1")
	return nil
}

// notifyApproved sends the approval notification. Runs after the commit
// point: outcomes are data on the result, never errors.
func (s *Service) notifyApproved(ctx context.Context, state *approvalState) (sent bool, sendErr string) {
	profile := state.resolved.profile
	msg := notifier.Message{
		Kind:               notifier.KindApplicationApproved,
		Recipient:          profile.Email,
		StudentName:        state.student.FullName,
		CohortName:         s.cohortDisplayName(ctx, state.student.CohortID),
		NeedsPasswordSetup: !profile.HasPassword(),
	}
	result := s.sender.Send(ctx, msg)
	if !result.Sent {
		if s.metrics != nil {
			s.metrics.NotificationFailures.Inc()
		}
		s.logger.WarnContext(ctx, "approval notification failed",
			"application_id", state.app.ID.String(), "error", result.Error)
	}
	return result.Sent, result.Error
}

// cohortDisplayName resolves a cohort name for notification copy, preferring
// the cache. Any failure degrades to an empty name.
func (s *Service) cohortDisplayName(ctx context.Context, cohortID *id.CohortID) string {
	if cohortID == nil {
		return ""
	}
	if s.cache != nil {
		if name, ok := s.cache.Get(ctx, *cohortID); ok {
			return name
		}
	}
	cohort, err := s.stores.Cohorts.FindByID(ctx, *cohortID)
	if err != nil {
		return ""
	}
	if s.cache != nil {
		s.cache.Set(ctx, *cohortID, cohort.Name)
	}
	return cohort.Name
}
