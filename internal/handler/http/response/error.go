package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/holiday"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/report"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/vacation"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/validator"
)

// Auth errors raised by the middleware
var (
	ErrInvalidToken           = errors.New("invalid or missing token")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, ErrInvalidToken):
		Unauthorized(w, "Invalid or missing token")
	case errors.Is(err, ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound), errors.Is(err, report.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Time entry domain errors
	case errors.Is(err, timeentry.ErrTimeEntryNotFound):
		NotFound(w, "Time entry not found")
	case errors.Is(err, timeentry.ErrNoOpenEntry):
		NotFound(w, "No open time entry")
	case errors.Is(err, timeentry.ErrNotClockedIn):
		Conflict(w, "Time entry has no clock-in")
	case errors.Is(err, timeentry.ErrEmptyPatch):
		BadRequest(w, "No fields to update", nil)
	case errors.Is(err, report.ErrEntryNotUnclosed):
		Conflict(w, "Time entry is not unclosed")

	// Vacation domain errors
	case errors.Is(err, vacation.ErrVacationDayNotFound):
		NotFound(w, "Vacation day not found")

	// Holiday domain errors
	case errors.Is(err, holiday.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")
	case errors.Is(err, holiday.ErrHolidayDateExists):
		Conflict(w, err.Error())
	case errors.Is(err, holiday.ErrInvalidImportSheet):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, holiday.ErrEmptyImport):
		BadRequest(w, "Import sheet contains no holidays", nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
