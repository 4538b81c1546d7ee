package memory

import (
	"context"

	"academy/internal/enrollment/models"
	id "academy/pkg/domain"
	"academy/pkg/platform/sentinel"
)

// StudentStore persists students in memory, keyed by the canonical
// identifier (which doubles as the profile id).
type StudentStore struct {
	db *DB
}

func (s *StudentStore) FindByID(_ context.Context, studentID id.StudentID) (*models.Student, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	student, ok := s.db.students[studentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneStudent(student), nil
}

func (s *StudentStore) Create(_ context.Context, student *models.Student) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, exists := s.db.students[student.ID]; exists {
		return uniqueViolation("students_pkey")
	}
	if student.FullName == "" {
		return notNullViolation("students.full_name")
	}
	if !s.db.cohortExists(student.CohortID) {
		return fkViolation("students_cohort_id_fkey")
	}
	s.db.students[student.ID] = *cloneStudent(*student)
	return nil
}

func (s *StudentStore) Update(_ context.Context, student *models.Student) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, exists := s.db.students[student.ID]; !exists {
		return sentinel.ErrNotFound
	}
	if !s.db.cohortExists(student.CohortID) {
		return fkViolation("students_cohort_id_fkey")
	}
	s.db.students[student.ID] = *cloneStudent(*student)
	return nil
}

func cloneStudent(student models.Student) *models.Student {
	clone := student
	clone.CohortID = cloneCohortID(student.CohortID)
	return &clone
}
