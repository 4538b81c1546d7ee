package memory

import (
	"context"

	"academy/internal/enrollment/models"
	id "academy/pkg/domain"
	"academy/pkg/platform/sentinel"
)

// CohortStore persists cohorts in memory.
type CohortStore struct {
	db *DB
}

func (s *CohortStore) FindByID(_ context.Context, cohortID id.CohortID) (*models.Cohort, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	cohort, ok := s.db.cohorts[cohortID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := cohort
	return &clone, nil
}

func (s *CohortStore) Create(_ context.Context, cohort *models.Cohort) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, exists := s.db.cohorts[cohort.ID]; exists {
		return uniqueViolation("cohorts_pkey")
	}
	if cohort.Name == "" {
		return notNullViolation("cohorts.name")
	}
	s.db.cohorts[cohort.ID] = *cohort
	return nil
}

// EnrollmentStore persists cohort membership rows in memory.
type EnrollmentStore struct {
	db *DB
}

func (s *EnrollmentStore) Find(_ context.Context, cohortID id.CohortID, studentID id.StudentID) (*models.CohortEnrollment, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	enrollment, ok := s.db.enrollments[enrollmentKey{cohortID: cohortID, studentID: studentID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := enrollment
	return &clone, nil
}

func (s *EnrollmentStore) Create(_ context.Context, enrollment *models.CohortEnrollment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	key := enrollmentKey{cohortID: enrollment.CohortID, studentID: enrollment.StudentID}
	if _, exists := s.db.enrollments[key]; exists {
		return uniqueViolation("cohort_enrollments_pkey")
	}
	if _, ok := s.db.cohorts[enrollment.CohortID]; !ok {
		return fkViolation("cohort_enrollments_cohort_id_fkey")
	}
	s.db.enrollments[key] = *enrollment
	return nil
}

func (s *EnrollmentStore) CountByCohort(_ context.Context, cohortID id.CohortID) (int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	count := 0
	for key := range s.db.enrollments {
		if key.cohortID == cohortID {
			count++
		}
	}
	return count, nil
}

// ChapterProgressStore persists chapter unlock rows in memory.
type ChapterProgressStore struct {
	db *DB
}

func (s *ChapterProgressStore) Find(_ context.Context, studentID id.StudentID, chapter int) (*models.ChapterProgress, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	progress, ok := s.db.chapters[chapterKey{studentID: studentID, chapter: chapter}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := progress
	return &clone, nil
}

func (s *ChapterProgressStore) Create(_ context.Context, progress *models.ChapterProgress) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	key := chapterKey{studentID: progress.StudentID, chapter: progress.Chapter}
	if _, exists := s.db.chapters[key]; exists {
		return uniqueViolation("chapter_progress_pkey")
	}
	s.db.chapters[key] = *progress
	return nil
}
