package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// UniqueViolation reports that a write collided with a unique column.
type UniqueViolation struct {
	Field      string
	Constraint string
}

func (e *UniqueViolation) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

// constraintFields maps unique constraints to the request field they guard.
var constraintFields = map[string]string{
	"migrants_email_key":          "email",
	"agencies_email_key":          "email",
	"agencies_license_number_key": "licenseNumber",
	"departments_email_key":       "email",
	"departments_name_lower_key":  "name",
	"governments_email_key":       "email",
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		field, ok := constraintFields[pgErr.ConstraintName]
		if !ok {
			field = "record"
		}
		return &UniqueViolation{Field: field, Constraint: pgErr.ConstraintName}
	}
	return err
}
