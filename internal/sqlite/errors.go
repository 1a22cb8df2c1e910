package sqlite

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/watermartph/watermart/internal/apperr"
)

// IsUniqueConstraintError checks if the error is a SQLite UNIQUE or PRIMARY KEY constraint violation.
func IsUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// IsStorageError reports whether the error is a driver-level persistence
// failure (full disk, I/O failure, corruption) rather than a logical error.
func IsStorageError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrFull, sqlite3.ErrIoErr, sqlite3.ErrCorrupt, sqlite3.ErrNotADB:
			return true
		}
	}
	return false
}

// Wrap annotates a database error with the failed operation. Driver-level
// persistence failures are additionally classified as apperr.ErrStorage.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsStorageError(err) {
		return fmt.Errorf("%s: %w: %w", op, apperr.ErrStorage, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
