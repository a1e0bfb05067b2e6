package postgresql

import (
	"errors"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/employee"
	"github.com/jackc/pgx/v5/pgconn"
)

// errEmployeeReference is returned when a row points at a missing employee.
var errEmployeeReference = employee.ErrEmployeeNotFound

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}
