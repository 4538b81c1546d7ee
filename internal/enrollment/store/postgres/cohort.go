package postgres

import (
	"context"
	"database/sql"

	"academy/internal/enrollment/models"
	id "academy/pkg/domain"
)

// CohortStore persists cohorts in postgres.
type CohortStore struct {
	db *sql.DB
}

func (s *CohortStore) FindByID(ctx context.Context, cohortID id.CohortID) (*models.Cohort, error) {
	var (
		cohort models.Cohort
		idRaw  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, capacity, starts_at, created_at
		FROM cohorts
		WHERE id = $1
	`, cohortID.String()).Scan(&idRaw, &cohort.Name, &cohort.Capacity, &cohort.StartsAt, &cohort.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	parsed, err := id.ParseCohortID(idRaw)
	if err != nil {
		return nil, err
	}
	cohort.ID = parsed
	return &cohort, nil
}

func (s *CohortStore) Create(ctx context.Context, cohort *models.Cohort) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cohorts (id, name, capacity, starts_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, cohort.ID.String(), cohort.Name, cohort.Capacity, cohort.StartsAt, cohort.CreatedAt)
	return translateError(err)
}

// EnrollmentStore persists cohort membership rows in postgres.
type EnrollmentStore struct {
	db *sql.DB
}

func (s *EnrollmentStore) Find(ctx context.Context, cohortID id.CohortID, studentID id.StudentID) (*models.CohortEnrollment, error) {
	enrollment := models.CohortEnrollment{CohortID: cohortID, StudentID: studentID}
	err := s.db.QueryRowContext(ctx, `
		SELECT enrolled_at
		FROM cohort_enrollments
		WHERE cohort_id = $1 AND student_id = $2
	`, cohortID.String(), studentID.String()).Scan(&enrollment.EnrolledAt)
	if err != nil {
		return nil, translateError(err)
	}
	return &enrollment, nil
}

func (s *EnrollmentStore) Create(ctx context.Context, enrollment *models.CohortEnrollment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cohort_enrollments (cohort_id, student_id, enrolled_at)
		VALUES ($1, $2, $3)
	`, enrollment.CohortID.String(), enrollment.StudentID.String(), enrollment.EnrolledAt)
	return translateError(err)
}

func (s *EnrollmentStore) CountByCohort(ctx context.Context, cohortID id.CohortID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM cohort_enrollments WHERE cohort_id = $1
	`, cohortID.String()).Scan(&count)
	if err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// ChapterProgressStore persists chapter unlock rows in postgres.
type ChapterProgressStore struct {
	db *sql.DB
}

func (s *ChapterProgressStore) Find(ctx context.Context, studentID id.StudentID, chapter int) (*models.ChapterProgress, error) {
	progress := models.ChapterProgress{StudentID: studentID, Chapter: chapter}
	err := s.db.QueryRowContext(ctx, `
		SELECT unlocked, unlocked_at
		FROM chapter_progress
		WHERE student_id = $1 AND chapter = $2
	`, studentID.String(), chapter).Scan(&progress.Unlocked, &progress.UnlockedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return &progress, nil
}

func (s *ChapterProgressStore) Create(ctx context.Context, progress *models.ChapterProgress) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chapter_progress (student_id, chapter, unlocked, unlocked_at)
		VALUES ($1, $2, $3, $4)
	`, progress.StudentID.String(), progress.Chapter, progress.Unlocked, progress.UnlockedAt)
	return translateError(err)
}
