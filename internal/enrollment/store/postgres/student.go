package postgres

import (
	"context"
	"database/sql"

	"academy/internal/enrollment/models"
	id "academy/pkg/domain"
)

// StudentStore persists student records in postgres.
type StudentStore struct {
	db *sql.DB
}

const studentColumns = `
	id, profile_id, full_name, email, phone, country, city, cohort_id, status,
	progress_percent, assignments_completed, projects_completed, live_sessions_attended,
	created_at, updated_at
`

func (s *StudentStore) FindByID(ctx context.Context, studentID id.StudentID) (*models.Student, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE id = $1
	`, studentID.String())
	return scanStudent(row)
}

func (s *StudentStore) Create(ctx context.Context, student *models.Student) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO students (
			id, profile_id, full_name, email, phone, country, city, cohort_id, status,
			progress_percent, assignments_completed, projects_completed, live_sessions_attended,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		student.ID.String(), student.ProfileID.String(), student.FullName, student.Email,
		student.Phone, student.Country, student.City, cohortIDValue(student.CohortID),
		string(student.Status), student.ProgressPercent, student.AssignmentsCompleted,
		student.ProjectsCompleted, student.LiveSessionsAttended,
		student.CreatedAt, student.UpdatedAt,
	)
	return translateError(err)
}

// Update writes contact, cohort and status fields. Progress counters are
// deliberately not in the column list: the approval path must never write
// them on an existing row.
func (s *StudentStore) Update(ctx context.Context, student *models.Student) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE students
		SET full_name = $2, email = $3, phone = $4, country = $5, city = $6,
		    cohort_id = $7, status = $8, updated_at = $9
		WHERE id = $1
	`,
		student.ID.String(), student.FullName, student.Email, student.Phone,
		student.Country, student.City, cohortIDValue(student.CohortID),
		string(student.Status), student.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}
	return requireRow(result)
}

func scanStudent(row *sql.Row) (*models.Student, error) {
	var (
		student   models.Student
		idRaw     string
		profileID string
		cohortID  sql.NullString
		status    string
	)
	err := row.Scan(
		&idRaw, &profileID, &student.FullName, &student.Email, &student.Phone,
		&student.Country, &student.City, &cohortID, &status,
		&student.ProgressPercent, &student.AssignmentsCompleted,
		&student.ProjectsCompleted, &student.LiveSessionsAttended,
		&student.CreatedAt, &student.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}

	parsedID, err := id.ParseStudentID(idRaw)
	if err != nil {
		return nil, err
	}
	parsedProfileID, err := id.ParseStudentID(profileID)
	if err != nil {
		return nil, err
	}
	student.ID = parsedID
	student.ProfileID = parsedProfileID
	student.Status = models.StudentStatus(status)
	if cohortID.Valid {
		parsed, perr := id.ParseCohortID(cohortID.String)
		if perr != nil {
			return nil, perr
		}
		student.CohortID = &parsed
	}
	return &student, nil
}
