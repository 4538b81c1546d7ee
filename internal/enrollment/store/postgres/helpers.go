package postgres

import (
	"database/sql"
	"time"

	id "academy/pkg/domain"
	"academy/pkg/platform/sentinel"
)

func cohortIDValue(cohortID *id.CohortID) any {
	if cohortID == nil {
		return nil
	}
	return cohortID.String()
}

func studentIDValue(studentID *id.StudentID) any {
	if studentID == nil {
		return nil
	}
	return studentID.String()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// requireRow turns a zero-row update into ErrNotFound.
func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
