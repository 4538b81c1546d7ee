package postgres

import (
	"context"
	"database/sql"

	"academy/internal/enrollment/models"
	id "academy/pkg/domain"
)

// ApplicationStore persists application records in postgres.
type ApplicationStore struct {
	db *sql.DB
}

const applicationColumns = `
	id, full_name, email, phone, country, city, preferred_cohort_id,
	status, profile_id, approved_by, approved_at, rejected_reason, rejected_at, created_at
`

func (s *ApplicationStore) FindByID(ctx context.Context, applicationID id.StudentID) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE id = $1
	`, applicationID.String())
	return scanApplication(row)
}

func (s *ApplicationStore) Create(ctx context.Context, app *models.Application) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, full_name, email, phone, country, city, preferred_cohort_id, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		app.ID.String(), app.FullName, app.Email, app.Phone, app.Country, app.City,
		cohortIDValue(app.PreferredCohortID), string(app.Status), app.CreatedAt,
	)
	return translateError(err)
}

func (s *ApplicationStore) Update(ctx context.Context, app *models.Application) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $2, profile_id = $3, approved_by = NULLIF($4, ''),
		    approved_at = $5, rejected_reason = NULLIF($6, ''), rejected_at = $7
		WHERE id = $1
	`,
		app.ID.String(), string(app.Status), studentIDValue(app.ProfileID),
		app.ApprovedBy, nullableTime(app.ApprovedAt), app.RejectedReason, nullableTime(app.RejectedAt),
	)
	if err != nil {
		return translateError(err)
	}
	return requireRow(result)
}

func scanApplication(row *sql.Row) (*models.Application, error) {
	var (
		app               models.Application
		idRaw             string
		preferredCohortID sql.NullString
		profileID         sql.NullString
		approvedBy        sql.NullString
		approvedAt        sql.NullTime
		rejectedReason    sql.NullString
		rejectedAt        sql.NullTime
		status            string
	)
	err := row.Scan(
		&idRaw, &app.FullName, &app.Email, &app.Phone, &app.Country, &app.City,
		&preferredCohortID, &status, &profileID, &approvedBy, &approvedAt,
		&rejectedReason, &rejectedAt, &app.CreatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}

	parsedID, err := id.ParseStudentID(idRaw)
	if err != nil {
		return nil, err
	}
	app.ID = parsedID
	app.Status = models.ApplicationStatus(status)
	app.ApprovedBy = approvedBy.String
	app.RejectedReason = rejectedReason.String
	if approvedAt.Valid {
		t := approvedAt.Time
		app.ApprovedAt = &t
	}
	if rejectedAt.Valid {
		t := rejectedAt.Time
		app.RejectedAt = &t
	}
	if preferredCohortID.Valid {
		cohortID, perr := id.ParseCohortID(preferredCohortID.String)
		if perr != nil {
			return nil, perr
		}
		app.PreferredCohortID = &cohortID
	}
	if profileID.Valid {
		pid, perr := id.ParseStudentID(profileID.String)
		if perr != nil {
			return nil, perr
		}
		app.ProfileID = &pid
	}
	return &app, nil
}
