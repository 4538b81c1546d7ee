package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"academy/internal/enrollment/models"
	"academy/internal/notifier"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/audit"
)

func (s *EnrollmentSuite) TestApproveCreatesAllRecords() {
	ctx := context.Background()
	app := s.newApplication("ada.wambui@example.com")

	result, err := s.svc.Approve(ctx, ApproveRequest{ApplicationID: app.ID, ApprovedBy: "admin@academy.io"})
	s.Require().NoError(err)

	s.Equal(app.ID, result.ProfileID, "profile id must be the canonical identifier")
	s.False(result.IsExistingProfile)
	s.True(result.NeedsPasswordSetup)
	s.True(result.EmailSent)
	s.Empty(result.EmailError)

	profile, err := s.db.Profiles().FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal("ada.wambui@example.com", profile.Email)
	s.Equal(models.ProfileStatusPendingPasswordSetup, profile.Status)

	student, err := s.db.Students().FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(app.ID, student.ProfileID)
	s.Equal(models.StudentStatusEnrolled, student.Status)
	s.Zero(student.ProgressPercent)

	_, err = s.db.Enrollments().Find(ctx, s.cohortID, app.ID)
	s.Require().NoError(err, "cohort membership row must exist")

	chapter, err := s.db.ChapterProgress().Find(ctx, app.ID, models.FirstChapter)
	s.Require().NoError(err)
	s.True(chapter.Unlocked)

	stored, err := s.db.Applications().FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(models.ApplicationStatusApproved, stored.Status)
	s.Require().NotNil(stored.ProfileID)
	s.Equal(app.ID, *stored.ProfileID)
	s.Equal("admin@academy.io", stored.ApprovedBy)
	s.NotNil(stored.ApprovedAt)

	messages := s.sender.Messages()
	s.Require().Len(messages, 1)
	s.Equal(notifier.KindApplicationApproved, messages[0].Kind)
	s.Equal("ada.wambui@example.com", messages[0].Recipient)
	s.Equal("Backend Engineering March 2026", messages[0].CohortName)
	s.True(messages[0].NeedsPasswordSetup)

	events, err := s.audit.ListByStudent(ctx, app.ID)
	s.Require().NoError(err)
	actions := make([]string, 0, len(events))
	for _, event := range events {
		actions = append(actions, event.Action)
	}
	s.Contains(actions, string(audit.EventApplicationApproved))
	s.Contains(actions, string(audit.EventProfileCreated))
}

func (s *EnrollmentSuite) TestApproveWithoutCohort() {
	ctx := context.Background()
	app := s.newApplication("no.cohort@example.com")
	app.PreferredCohortID = nil
	s.Require().NoError(s.db.Applications().Update(ctx, app))

	result, err := s.svc.Approve(ctx, ApproveRequest{ApplicationID: app.ID})
	s.Require().NoError(err)
	s.Equal(app.ID, result.ProfileID)

	count, err := s.db.Enrollments().CountByCohort(ctx, s.cohortID)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *EnrollmentSuite) TestApproveUnknownApplication() {
	_, err := s.svc.Approve(context.Background(), ApproveRequest{ApplicationID: id.StudentID(uuid.New())})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *EnrollmentSuite) TestApproveTerminalStatesWriteNothing() {
	ctx := context.Background()

	approved := s.newApplication("already.approved@example.com")
	_, err := s.svc.Approve(ctx, ApproveRequest{ApplicationID: approved.ID})
	s.Require().NoError(err)

	rejected := s.newApplication("already.rejected@example.com")
	_, err = s.svc.Reject(ctx, RejectRequest{ApplicationID: rejected.ID, Reason: "incomplete"})
	s.Require().NoError(err)

	apps := &countingApplicationStore{ApplicationStore: s.stores.Applications}
	profiles := &countingProfileStore{ProfileStore: s.stores.Profiles}
	students := &countingStudentStore{StudentStore: s.stores.Students}
	counted := s.stores
	counted.Applications = apps
	counted.Profiles = profiles
	counted.Students = students
	svc := s.newService(counted)

	_, err = svc.Approve(ctx, ApproveRequest{ApplicationID: approved.ID})
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyApproved))

	_, err = svc.Approve(ctx, ApproveRequest{ApplicationID: rejected.ID})
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRejected))

	s.Zero(apps.updates)
	s.Zero(profiles.creates)
	s.Zero(profiles.updates)
	s.Zero(students.creates)
	s.Zero(students.updates)
}

func (s *EnrollmentSuite) TestApproveExistingProfile() {
	ctx := context.Background()
	verifiedAt := time.Now().UTC()
	existing := &models.Profile{
		ID:              id.StudentID(uuid.New()),
		Email:           "returning@example.com",
		FullName:        "Returning Student",
		Status:          models.ProfileStatusActive,
		EmailVerifiedAt: &verifiedAt,
		PasswordHash:    "$2a$10$existinghash",
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	s.Require().NoError(s.db.Profiles().Create(ctx, existing))

	app := s.newApplication("returning@example.com")
	result, err := s.svc.Approve(ctx, ApproveRequest{ApplicationID: app.ID})
	s.Require().NoError(err)

	s.Equal(existing.ID, result.ProfileID, "existing profile id wins over the application id")
	s.True(result.IsExistingProfile)
	s.False(result.NeedsPasswordSetup)

	student, err := s.db.Students().FindByID(ctx, existing.ID)
	s.Require().NoError(err)
	s.Equal(existing.ID, student.ProfileID)

	stored, err := s.db.Applications().FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.ProfileID)
	s.Equal(existing.ID, *stored.ProfileID)
}

func (s *EnrollmentSuite) TestApproveUnverifiedEmailBlocked() {
	ctx := context.Background()
	existing := &models.Profile{
		ID:        id.StudentID(uuid.New()),
		Email:     "unverified@example.com",
		FullName:  "Unverified Person",
		Status:    models.ProfileStatusPendingPasswordSetup,
		CreatedAt: verificationCutoff.Add(24 * time.Hour),
		UpdatedAt: verificationCutoff.Add(24 * time.Hour),
	}
	s.Require().NoError(s.db.Profiles().Create(ctx, existing))

	app := s.newApplication("unverified@example.com")
	_, err := s.svc.Approve(ctx, ApproveRequest{ApplicationID: app.ID})
	s.True(dErrors.HasCode(err, dErrors.CodeEmailNotVerified))

	stored, ferr := s.db.Applications().FindByID(ctx, app.ID)
	s.Require().NoError(ferr)
	s.Equal(models.ApplicationStatusPending, stored.Status, "blocked approval must not commit")

	_, serr := s.db.Students().FindByID(ctx, existing.ID)
	s.Error(serr, "no student row may be created behind the verification gate")
}

func (s *EnrollmentSuite) TestApproveGrandfatheredProfile() {
	ctx := context.Background()
	existing := &models.Profile{
		ID:        id.StudentID(uuid.New()),
		Email:     "oldtimer@example.com",
		FullName:  "Old Timer",
		Status:    models.ProfileStatusActive,
		CreatedAt: verificationCutoff.Add(-48 * time.Hour),
		UpdatedAt: verificationCutoff.Add(-48 * time.Hour),
	}
	s.Require().NoError(s.db.Profiles().Create(ctx, existing))

	app := s.newApplication("oldtimer@example.com")
	result, err := s.svc.Approve(ctx, ApproveRequest{ApplicationID: app.ID})
	s.Require().NoError(err)
	s.Equal(existing.ID, result.ProfileID)
}

func (s *EnrollmentSuite) TestApprovePreservesProgressCounters() {
	ctx := context.Background()
	verifiedAt := time.Now().UTC()
	profile := &models.Profile{
		ID:              id.StudentID(uuid.New()),
		Email:           "progressed@example.com",
		FullName:        "Progressed Student",
		Status:          models.ProfileStatusActive,
		EmailVerifiedAt: &verifiedAt,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	s.Require().NoError(s.db.Profiles().Create(ctx, profile))
	s.Require().NoError(s.db.Students().Create(ctx, &models.Student{
		ID:                   profile.ID,
		ProfileID:            profile.ID,
		FullName:             "Old Name",
		Email:                "progressed@example.com",
		Status:               models.StudentStatusApplied,
		ProgressPercent:      40,
		AssignmentsCompleted: 7,
		ProjectsCompleted:    2,
		LiveSessionsAttended: 12,
		CreatedAt:            time.Now().UTC(),
		UpdatedAt:            time.Now().UTC(),
	}))

	app := s.newApplication("progressed@example.com")
	_, err := s.svc.Approve(ctx, ApproveRequest{ApplicationID: app.ID})
	s.Require().NoError(err)

	student, err := s.db.Students().FindByID(ctx, profile.ID)
	s.Require().NoError(err)
	s.Equal(40, student.ProgressPercent)
	s.Equal(7, student.AssignmentsCompleted)
	s.Equal(2, student.ProjectsCompleted)
	s.Equal(12, student.LiveSessionsAttended)
	s.Equal("Ada Wambui", student.FullName, "contact fields refresh from the application")
	s.Equal(models.StudentStatusEnrolled, student.Status)
}

func (s *EnrollmentSuite) TestApproveResumesAfterPartialFailure() {
	ctx := context.Background()
	app := s.newApplication("resumed@example.com")

	flaky := s.stores
	flaky.Enrollments = &flakyEnrollmentStore{EnrollmentStore: s.stores.Enrollments, failures: 1}
	svc := s.newService(flaky)

	_, err := svc.Approve(ctx, ApproveRequest{ApplicationID: app.ID})
	s.Require().Error(err, "first attempt aborts on the enrollment write")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	stored, ferr := s.db.Applications().FindByID(ctx, app.ID)
	s.Require().NoError(ferr)
	s.Equal(models.ApplicationStatusPending, stored.Status, "commit point not reached")

	// Partial state survives: profile and student already exist.
	_, perr := s.db.Profiles().FindByID(ctx, app.ID)
	s.Require().NoError(perr)
	_, serr := s.db.Students().FindByID(ctx, app.ID)
	s.Require().NoError(serr)

	result, err := svc.Approve(ctx, ApproveRequest{ApplicationID: app.ID})
	s.Require().NoError(err, "retry resumes through the existing-record paths")
	s.Equal(app.ID, result.ProfileID)
	s.True(result.IsExistingProfile, "retry adopts the partially created profile")

	stored, ferr = s.db.Applications().FindByID(ctx, app.ID)
	s.Require().NoError(ferr)
	s.Equal(models.ApplicationStatusApproved, stored.Status)

	student, serr := s.db.Students().FindByID(ctx, app.ID)
	s.Require().NoError(serr)
	s.Zero(student.ProgressPercent, "counters keep their pre-approval values")

	_, eerr := s.db.Enrollments().Find(ctx, s.cohortID, app.ID)
	s.Require().NoError(eerr)
}

func (s *EnrollmentSuite) TestApproveDanglingCohortReference() {
	ctx := context.Background()
	app := s.newApplication("dangling@example.com")
	bogus := id.CohortID(uuid.New())
	app.PreferredCohortID = &bogus
	s.Require().NoError(s.db.Applications().Update(ctx, app))

	_, err := s.svc.Approve(ctx, ApproveRequest{ApplicationID: app.ID})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidReference))

	stored, ferr := s.db.Applications().FindByID(ctx, app.ID)
	s.Require().NoError(ferr)
	s.Equal(models.ApplicationStatusPending, stored.Status)
}

func (s *EnrollmentSuite) TestApproveNotificationFailureDoesNotAffectOutcome() {
	ctx := context.Background()
	s.sender.FailWith("smtp relay down")

	app := s.newApplication("nomail@example.com")
	result, err := s.svc.Approve(ctx, ApproveRequest{ApplicationID: app.ID})
	s.Require().NoError(err, "notification failure never fails an approval")
	s.False(result.EmailSent)
	s.Equal("smtp relay down", result.EmailError)

	stored, ferr := s.db.Applications().FindByID(ctx, app.ID)
	s.Require().NoError(ferr)
	s.Equal(models.ApplicationStatusApproved, stored.Status)
}

func (s *EnrollmentSuite) TestApproveCohortCapacity() {
	ctx := context.Background()
	smallCohort := id.CohortID(uuid.New())
	s.Require().NoError(s.db.Cohorts().Create(ctx, &models.Cohort{
		ID:        smallCohort,
		Name:      "Tiny Cohort",
		Capacity:  1,
		StartsAt:  time.Now().UTC(),
		CreatedAt: time.Now().UTC(),
	}))
	s.Require().NoError(s.db.Enrollments().Create(ctx, &models.CohortEnrollment{
		CohortID:   smallCohort,
		StudentID:  id.StudentID(uuid.New()),
		EnrolledAt: time.Now().UTC(),
	}))

	makeApp := func(addr string) *models.Application {
		app := s.newApplication(addr)
		app.PreferredCohortID = &smallCohort
		s.Require().NoError(s.db.Applications().Update(ctx, app))
		return app
	}

	s.Run("advisory by default", func() {
		app := makeApp("overflow.ok@example.com")
		_, err := s.svc.Approve(ctx, ApproveRequest{ApplicationID: app.ID})
		s.NoError(err, "admins may override capacity unless enforcement is on")
	})

	s.Run("blocking when enforced", func() {
		app := makeApp("overflow.blocked@example.com")
		strict := New(Config{
			VerificationCutoff:    verificationCutoff,
			EnforceCohortCapacity: true,
		}, s.stores, s.sender, WithLogger(s.svc.logger))
		_, err := strict.Approve(ctx, ApproveRequest{ApplicationID: app.ID})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *EnrollmentSuite) TestConcurrentApprovalsShareOneProfile() {
	ctx := context.Background()
	first := s.newApplication("raced@example.com")
	second := s.newApplication("raced@example.com")

	var (
		wg      sync.WaitGroup
		results [2]ApproveResult
		errs    [2]error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], errs[0] = s.svc.Approve(ctx, ApproveRequest{ApplicationID: first.ID})
	}()
	go func() {
		defer wg.Done()
		results[1], errs[1] = s.svc.Approve(ctx, ApproveRequest{ApplicationID: second.ID})
	}()
	wg.Wait()

	s.Require().NoError(errs[0])
	s.Require().NoError(errs[1])
	s.Equal(results[0].ProfileID, results[1].ProfileID, "both approvals must converge on one profile")
}
