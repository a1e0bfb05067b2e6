package timeentry

import (
	"time"

	"github.com/cmlabs-hris/timeclock-go/internal/pkg/validator"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/worktime"
	"github.com/shopspring/decimal"
)

type ClockInRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if !validator.IsValidClock(r.Time) {
		errs = append(errs, validator.ValidationError{
			Field:   "time",
			Message: "time must be in HH:MM format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ClockOutRequest struct {
	ID   string `json:"-"`
	Time string `json:"time"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}

	if !validator.IsValidClock(r.Time) {
		errs = append(errs, validator.ValidationError{
			Field:   "time",
			Message: "time must be in HH:MM format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SetBreakRequest struct {
	ID         string `json:"-"`
	BreakTaken *bool  `json:"break_taken"`
}

func (r *SetBreakRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}

	if r.BreakTaken == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "break_taken",
			Message: "break_taken is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TimeEntryResponse struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	Date       string          `json:"date"`
	ClockIn    *string         `json:"clock_in"`
	ClockOut   *string         `json:"clock_out"`
	BreakTaken bool            `json:"break_taken"`
	Hours      decimal.Decimal `json:"hours"`
	CreatedAt  string          `json:"created_at"`
}

func NewTimeEntryResponse(e TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		Date:       e.DateString(),
		ClockIn:    e.ClockIn,
		ClockOut:   e.ClockOut,
		BreakTaken: e.BreakTaken,
		Hours:      worktime.Round(e.Hours()),
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
}
