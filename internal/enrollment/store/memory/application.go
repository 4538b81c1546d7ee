package memory

import (
	"context"

	"academy/internal/enrollment/models"
	id "academy/pkg/domain"
	"academy/pkg/platform/sentinel"
)

// ApplicationStore persists applications in memory.
type ApplicationStore struct {
	db *DB
}

func (s *ApplicationStore) FindByID(_ context.Context, applicationID id.StudentID) (*models.Application, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	app, ok := s.db.applications[applicationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneApplication(app), nil
}

func (s *ApplicationStore) Create(_ context.Context, app *models.Application) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, exists := s.db.applications[app.ID]; exists {
		return uniqueViolation("applications_pkey")
	}
	if app.Email == "" {
		return notNullViolation("applications.email")
	}
	if !s.db.cohortExists(app.PreferredCohortID) {
		return fkViolation("applications_preferred_cohort_id_fkey")
	}
	s.db.applications[app.ID] = *cloneApplication(*app)
	return nil
}

func (s *ApplicationStore) Update(_ context.Context, app *models.Application) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, exists := s.db.applications[app.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.db.applications[app.ID] = *cloneApplication(*app)
	return nil
}

func cloneApplication(app models.Application) *models.Application {
	clone := app
	clone.PreferredCohortID = cloneCohortID(app.PreferredCohortID)
	if app.ProfileID != nil {
		profileID := *app.ProfileID
		clone.ProfileID = &profileID
	}
	if app.ApprovedAt != nil {
		t := *app.ApprovedAt
		clone.ApprovedAt = &t
	}
	if app.RejectedAt != nil {
		t := *app.RejectedAt
		clone.RejectedAt = &t
	}
	return &clone
}
