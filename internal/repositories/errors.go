package repositories

import (
	"errors"
	"strings"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"gorm.io/gorm"
)

// isUniqueViolation recognises unique-index failures from PostgreSQL and SQLite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// notFound maps gorm.ErrRecordNotFound to an apperrors NotFound with msg.
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(msg)
	}
	return err
}
