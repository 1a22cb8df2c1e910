// Package apperr defines the error taxonomy shared by the data access,
// analytics and backup layers. Callers classify failures with errors.Is
// against the sentinels below.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates caller-supplied data failed basic shape
	// checks (empty strings, non-positive gallons).
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates the operation targeted a nonexistent id.
	ErrNotFound = errors.New("not found")

	// ErrStorage indicates an underlying persistence failure such as a
	// full disk or a corrupt database file.
	ErrStorage = errors.New("storage error")

	// ErrImportFormat indicates a malformed or incomplete backup document.
	ErrImportFormat = errors.New("invalid backup file format")
)

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// Storagef wraps ErrStorage with a formatted message.
func Storagef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrStorage}, args...)...)
}

// ImportFormatf wraps ErrImportFormat with a formatted message.
func ImportFormatf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrImportFormat}, args...)...)
}
