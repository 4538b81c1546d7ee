package postgres

import (
	"context"
	"database/sql"

	"academy/internal/enrollment/models"
	id "academy/pkg/domain"
	"academy/pkg/email"
)

// ProfileStore persists profile records in postgres. Emails are stored
// normalized; the profiles_email_key unique index is the arbiter for
// concurrent profile creation.
type ProfileStore struct {
	db *sql.DB
}

const profileColumns = `
	id, email, full_name, phone, country, city, cohort_id,
	status, email_verified_at, password_hash, created_at, updated_at
`

func (s *ProfileStore) FindByID(ctx context.Context, profileID id.StudentID) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE id = $1
	`, profileID.String())
	return scanProfile(row)
}

func (s *ProfileStore) FindByEmail(ctx context.Context, address string) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE email = $1
	`, email.Normalize(address))
	return scanProfile(row)
}

func (s *ProfileStore) Create(ctx context.Context, profile *models.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (
			id, email, full_name, phone, country, city, cohort_id,
			status, email_verified_at, password_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		profile.ID.String(), email.Normalize(profile.Email), profile.FullName,
		profile.Phone, profile.Country, profile.City, cohortIDValue(profile.CohortID),
		string(profile.Status), nullableTime(profile.EmailVerifiedAt),
		profile.PasswordHash, profile.CreatedAt, profile.UpdatedAt,
	)
	return translateError(err)
}

func (s *ProfileStore) Update(ctx context.Context, profile *models.Profile) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE profiles
		SET full_name = $2, phone = $3, country = $4, city = $5, cohort_id = $6,
		    status = $7, email_verified_at = $8, password_hash = $9, updated_at = $10
		WHERE id = $1
	`,
		profile.ID.String(), profile.FullName, profile.Phone, profile.Country,
		profile.City, cohortIDValue(profile.CohortID), string(profile.Status),
		nullableTime(profile.EmailVerifiedAt), profile.PasswordHash, profile.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}
	return requireRow(result)
}

func scanProfile(row *sql.Row) (*models.Profile, error) {
	var (
		profile         models.Profile
		idRaw           string
		cohortID        sql.NullString
		status          string
		emailVerifiedAt sql.NullTime
		passwordHash    sql.NullString
	)
	err := row.Scan(
		&idRaw, &profile.Email, &profile.FullName, &profile.Phone,
		&profile.Country, &profile.City, &cohortID, &status,
		&emailVerifiedAt, &passwordHash, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}

	parsedID, err := id.ParseStudentID(idRaw)
	if err != nil {
		return nil, err
	}
	profile.ID = parsedID
	profile.Status = models.ProfileStatus(status)
	profile.PasswordHash = passwordHash.String
	if emailVerifiedAt.Valid {
		t := emailVerifiedAt.Time
		profile.EmailVerifiedAt = &t
	}
	if cohortID.Valid {
		parsed, perr := id.ParseCohortID(cohortID.String)
		if perr != nil {
			return nil, perr
		}
		profile.CohortID = &parsed
	}
	return &profile, nil
}
