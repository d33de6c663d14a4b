package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL (error code 23505)
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// MySQL (error code 1062)
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

// IsIntegrityViolationErr reports whether err is a store-level constraint
// violation (unique, foreign key, check, not-null). Only the transaction
// guard's best-effort path is allowed to absorb these.
func IsIntegrityViolationErr(err error) bool {
	if err == nil {
		return false
	}

	if IsDuplicateKeyErr(err) {
		return true
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	msg := err.Error()

	// PostgreSQL (error codes 23502, 23503, 23514)
	if strings.Contains(msg, "violates foreign key constraint") ||
		strings.Contains(msg, "violates not-null constraint") ||
		strings.Contains(msg, "violates check constraint") {
		return true
	}

	// MySQL (error codes 1451, 1452)
	if strings.Contains(msg, "Error 1451") || strings.Contains(msg, "Error 1452") {
		return true
	}

	// SQLite
	if strings.Contains(msg, "constraint failed") {
		return true
	}

	return false
}
