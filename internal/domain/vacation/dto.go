package vacation

import (
	"fmt"

	"github.com/cmlabs-hris/timeclock-go/internal/pkg/validator"
)

type CreateVacationRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Type       string `json:"type"`
}

func (r *CreateVacationRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
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

	if r.Type == "" {
		r.Type = string(TypeVacation)
	}
	if !validator.IsInSlice(r.Type, Types) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: ErrInvalidType.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ListVacationRequest filters by employee and, optionally, by month.
// Month is zero-based; both Month and Year must be set to filter by month.
type ListVacationRequest struct {
	EmployeeID string
	Month      *int
	Year       *int
}

func (r *ListVacationRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID != "" && !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if (r.Month == nil) != (r.Year == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month and year must be given together",
		})
	}
	if r.Month != nil && (*r.Month < 0 || *r.Month > 11) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 0 and 11",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Filter converts the request into a repository-level filter.
func (r ListVacationRequest) Filter() VacationFilter {
	f := VacationFilter{EmployeeID: r.EmployeeID}
	if r.Month != nil && r.Year != nil {
		f.Prefix = fmt.Sprintf("%04d-%02d", *r.Year, *r.Month+1)
	}
	return f
}

type VacationDayResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Type       string `json:"type"`
}

func NewVacationDayResponse(v VacationDay) VacationDayResponse {
	return VacationDayResponse{
		ID:         v.ID,
		EmployeeID: v.EmployeeID,
		Date:       v.DateString(),
		Type:       string(v.Type),
	}
}
