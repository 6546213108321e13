package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors

	// Time-entry input errors wrap the field errors, so they are matched first.
	if errors.Is(err, timeentry.ErrInvalidInput) {
		var details map[string]string
		if errors.As(err, &validationErrs) {
			details = validationErrs.ToMap()
		}
		BadRequest(w, "Invalid input", details)
		return
	}

	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Time-entry domain errors
	case errors.Is(err, timeentry.ErrTimeEntryNotFound):
		NotFound(w, "Time entry not found")
	case errors.Is(err, timeentry.ErrDuplicateEntry):
		Conflict(w, "A time entry already exists for this employee on this day")
	case errors.Is(err, timeentry.ErrExitAlreadyRegistered):
		Conflict(w, "Exit time has already been registered")
	case errors.Is(err, timeentry.ErrUnresolved):
		NotFound(w, "Referenced employee or user not found")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrUserNotFound):
		NotFound(w, "Linked user not found")

	// User and auth domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUsernameTaken):
		Conflict(w, "Username is already in use")
	case errors.Is(err, user.ErrEmailTaken):
		Conflict(w, "Email is already registered")
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid username, email or password")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenRevoked):
		Unauthorized(w, err.Error())

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
