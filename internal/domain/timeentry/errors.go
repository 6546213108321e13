package timeentry

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrTimeEntryNotFound     = errors.New("time entry not found")
	ErrDuplicateEntry        = errors.New("a time entry already exists for this employee on this date")
	ErrExitAlreadyRegistered = errors.New("exit time already registered for this time entry")
	ErrUnresolved            = errors.New("referenced employee or user could not be resolved")
)

// InvalidInput joins field errors with ErrInvalidInput so callers can match either.
func InvalidInput(errs validator.ValidationErrors) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, errs)
}

// InvalidField is InvalidInput for a single field.
func InvalidField(field, message string) error {
	return InvalidInput(validator.ValidationErrors{{Field: field, Message: message}})
}
