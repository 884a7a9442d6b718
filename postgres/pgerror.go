package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation    = "23505"
	pgInvalidCatalogName = "3D000"
)

func pgErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// isUniqueViolation returns if the error is a
// unique-constraint violation.
func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

// isInvalidCatalog returns if the error means the
// target database does not exist.
func isInvalidCatalog(err error) bool {
	return pgErrorCode(err) == pgInvalidCatalogName
}
