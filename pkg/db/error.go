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

// IsLockErr reports whether err looks like a lock wait timeout or deadlock
// reported by the storage layer.
func IsLockErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	// PostgreSQL (40P01, 55P03)
	if strings.Contains(msg, "deadlock detected") || strings.Contains(msg, "could not obtain lock") {
		return true
	}

	// MySQL (1205, 1213)
	if strings.Contains(msg, "Lock wait timeout exceeded") || strings.Contains(msg, "Deadlock found") {
		return true
	}

	// SQLite
	if strings.Contains(msg, "database is locked") {
		return true
	}

	return false
}
