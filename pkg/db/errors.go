package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolationCode = "23505"

// IsUniqueViolation reports whether the provided error is a unique constraint
// violation. When a constraint name is provided, only that constraint matches.
func IsUniqueViolation(err error, constraintName ...string) bool {
	if err == nil {
		return false
	}

	name := ""
	if len(constraintName) > 0 {
		name = constraintName[0]
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolationCode {
			return false
		}
		if name == "" {
			return true
		}
		return pgErr.ConstraintName == name
	}

	// sqlite (dev/test backend) reports constraint failures as plain text.
	msg := err.Error()
	if name != "" && strings.Contains(msg, name) {
		return true
	}
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
