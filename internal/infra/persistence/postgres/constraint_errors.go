package postgres

import (
	"strings"

	"dispatch/internal/errors"

	"gorm.io/gorm"
)

// uniqueViolationCode is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolationCode = "23505"

// isUniqueConstraintViolation recognizes duplicate keys whether or not the
// dialector translated the driver error.
func isUniqueConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, uniqueViolationCode) || strings.Contains(msg, "duplicate key")
}
