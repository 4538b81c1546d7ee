//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"academy/internal/enrollment/models"
	"academy/internal/enrollment/store/postgres"
	id "academy/pkg/domain"
	"academy/pkg/platform/sentinel"
	"academy/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	stores   *postgres.Stores

	cohortID id.CohortID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.stores = postgres.NewStores(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	// Truncate in dependency order
	err := s.postgres.TruncateTables(ctx,
		"chapter_progress", "cohort_enrollments", "students", "profiles", "applications", "cohorts")
	s.Require().NoError(err)

	s.cohortID = id.CohortID(uuid.New())
	s.Require().NoError(s.stores.Cohorts.Create(ctx, &models.Cohort{
		ID:        s.cohortID,
		Name:      "Integration Cohort",
		Capacity:  5,
		StartsAt:  time.Now().UTC(),
		CreatedAt: time.Now().UTC(),
	}))
}

func newTestProfile(emailAddr string) *models.Profile {
	now := time.Now().UTC()
	return &models.Profile{
		ID:        id.StudentID(uuid.New()),
		Email:     emailAddr,
		FullName:  "Integration Person",
		Status:    models.ProfileStatusPendingPasswordSetup,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TestConcurrentProfileCreation verifies that the profiles_email_key unique
// index arbitrates concurrent creation: exactly one insert wins and every
// loser observes a unique violation it can recover from by re-reading.
func (s *PostgresStoreSuite) TestConcurrentProfileCreation() {
	ctx := context.Background()
	address := "raced+" + uuid.NewString() + "@example.com"
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.stores.Profiles.Create(ctx, newTestProfile(address))
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrUniqueViolation):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should get a unique violation")

	winner, err := s.stores.Profiles.FindByEmail(ctx, address)
	s.Require().NoError(err)
	s.Equal(address, winner.Email)
}

func (s *PostgresStoreSuite) TestProfileViolationCarriesConstraintName() {
	ctx := context.Background()
	profile := newTestProfile("constraint@example.com")
	s.Require().NoError(s.stores.Profiles.Create(ctx, profile))

	err := s.stores.Profiles.Create(ctx, newTestProfile("constraint@example.com"))
	s.Require().ErrorIs(err, sentinel.ErrUniqueViolation)
	s.Equal("profiles_email_key", sentinel.ViolationConstraint(err))
	s.Equal(sentinel.SQLStateUniqueViolation, sentinel.SQLState(err))
}

func (s *PostgresStoreSuite) TestProfileCohortForeignKey() {
	ctx := context.Background()
	profile := newTestProfile("fk@example.com")
	bogus := id.CohortID(uuid.New())
	profile.CohortID = &bogus

	err := s.stores.Profiles.Create(ctx, profile)
	s.Require().ErrorIs(err, sentinel.ErrForeignKeyViolation)
	s.Equal("profiles_cohort_id_fkey", sentinel.ViolationConstraint(err))
}

func (s *PostgresStoreSuite) TestApplicationRoundTrip() {
	ctx := context.Background()
	cohortID := s.cohortID
	app := &models.Application{
		ID:                id.StudentID(uuid.New()),
		FullName:          "Applicant",
		Email:             "applicant@example.com",
		Phone:             "+254700000000",
		Country:           "Kenya",
		City:              "Nairobi",
		PreferredCohortID: &cohortID,
		Status:            models.ApplicationStatusPending,
		CreatedAt:         time.Now().UTC(),
	}
	s.Require().NoError(s.stores.Applications.Create(ctx, app))

	profileID := app.ID
	app.ApplyApproval(profileID, "admin@academy.io", time.Now().UTC())
	s.Require().NoError(s.stores.Applications.Update(ctx, app))

	stored, err := s.stores.Applications.FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(models.ApplicationStatusApproved, stored.Status)
	s.Require().NotNil(stored.ProfileID)
	s.Equal(profileID, *stored.ProfileID)
	s.Equal("admin@academy.io", stored.ApprovedBy)
	s.Require().NotNil(stored.PreferredCohortID)
	s.Equal(s.cohortID, *stored.PreferredCohortID)
}

// TestStudentUpdateNeverWritesCounters drives the update path directly and
// proves counters stay at their stored values no matter what the caller's
// struct carries.
func (s *PostgresStoreSuite) TestStudentUpdateNeverWritesCounters() {
	ctx := context.Background()
	now := time.Now().UTC()
	student := &models.Student{
		ID:                   id.StudentID(uuid.New()),
		ProfileID:            id.StudentID(uuid.New()),
		FullName:             "Progressed",
		Email:                "progressed@example.com",
		Status:               models.StudentStatusEnrolled,
		ProgressPercent:      60,
		AssignmentsCompleted: 9,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	student.ProfileID = student.ID
	s.Require().NoError(s.stores.Students.Create(ctx, student))

	student.FullName = "Progressed Renamed"
	student.ProgressPercent = 0
	student.AssignmentsCompleted = 0
	student.UpdatedAt = time.Now().UTC()
	s.Require().NoError(s.stores.Students.Update(ctx, student))

	stored, err := s.stores.Students.FindByID(ctx, student.ID)
	s.Require().NoError(err)
	s.Equal("Progressed Renamed", stored.FullName)
	s.Equal(60, stored.ProgressPercent, "counters are not in the update column list")
	s.Equal(9, stored.AssignmentsCompleted)
}

func (s *PostgresStoreSuite) TestEnrollmentUniqueAndCount() {
	ctx := context.Background()
	studentID := id.StudentID(uuid.New())
	enrollment := &models.CohortEnrollment{
		CohortID:   s.cohortID,
		StudentID:  studentID,
		EnrolledAt: time.Now().UTC(),
	}
	s.Require().NoError(s.stores.Enrollments.Create(ctx, enrollment))

	err := s.stores.Enrollments.Create(ctx, enrollment)
	s.Require().ErrorIs(err, sentinel.ErrUniqueViolation)
	s.Equal("cohort_enrollments_pkey", sentinel.ViolationConstraint(err))

	count, err := s.stores.Enrollments.CountByCohort(ctx, s.cohortID)
	s.Require().NoError(err)
	s.Equal(1, count)

	_, err = s.stores.Enrollments.Find(ctx, s.cohortID, id.StudentID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestChapterProgressDuplicate() {
	ctx := context.Background()
	progress := &models.ChapterProgress{
		StudentID:  id.StudentID(uuid.New()),
		Chapter:    models.FirstChapter,
		Unlocked:   true,
		UnlockedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.stores.Chapters.Create(ctx, progress))

	err := s.stores.Chapters.Create(ctx, progress)
	s.Require().ErrorIs(err, sentinel.ErrUniqueViolation)
	s.Equal("chapter_progress_pkey", sentinel.ViolationConstraint(err))
}
