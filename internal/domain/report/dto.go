package report

import (
	"time"

	"github.com/cmlabs-hris/timeclock-go/internal/pkg/validator"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/worktime"
	"github.com/shopspring/decimal"
)

// ========================================
// MONTHLY PAYROLL REPORT
// ========================================

// MonthlyReportRequest selects a month; Month is zero-based.
type MonthlyReportRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *MonthlyReportRequest) Validate() error {
	return validatePeriod(r.Month, r.Year)
}

func (r MonthlyReportRequest) Period() Period {
	return Period{Month: r.Month, Year: r.Year}
}

func validatePeriod(month, year int) error {
	var errs validator.ValidationErrors

	if month < 0 || month > 11 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: ErrInvalidMonth.Error(),
		})
	}

	if year < 1 || year > 9999 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: ErrInvalidYear.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MonthlyReportResponse struct {
	Month       int                   `json:"month"`
	Year        int                   `json:"year"`
	Period      string                `json:"period"`
	GeneratedAt string                `json:"generated_at"`
	Employees   []EmployeeRowResponse `json:"employees"`
	Totals      TotalsResponse        `json:"totals"`
}

type EmployeeRowResponse struct {
	EmployeeID   string          `json:"employee_id"`
	Name         string          `json:"name"`
	Role         string          `json:"role"`
	TotalHours   decimal.Decimal `json:"total_hours"`
	RegularHours decimal.Decimal `json:"regular_hours"`
	HolidayHours decimal.Decimal `json:"holiday_hours"`
	Days         int             `json:"days"`
	VacationDays int             `json:"vacation_days"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
	Wage         decimal.Decimal `json:"wage"`
	HolidayBonus decimal.Decimal `json:"holiday_bonus"`
	AtWork       bool            `json:"at_work"`
}

type TotalsResponse struct {
	TotalHours   decimal.Decimal `json:"total_hours"`
	RegularHours decimal.Decimal `json:"regular_hours"`
	HolidayHours decimal.Decimal `json:"holiday_hours"`
	Days         int             `json:"days"`
	VacationDays int             `json:"vacation_days"`
	HolidayBonus decimal.Decimal `json:"holiday_bonus"`
	Wage         decimal.Decimal `json:"wage"`
}

func NewMonthlyReportResponse(r MonthlyReport, generatedAt time.Time) MonthlyReportResponse {
	rows := make([]EmployeeRowResponse, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, EmployeeRowResponse{
			EmployeeID:   row.EmployeeID,
			Name:         row.Name,
			Role:         row.Role,
			TotalHours:   row.TotalHours,
			RegularHours: row.RegularHours,
			HolidayHours: row.HolidayHours,
			Days:         row.Days,
			VacationDays: row.VacationDays,
			HourlyRate:   row.HourlyRate,
			Wage:         row.Wage,
			HolidayBonus: row.HolidayBonus,
			AtWork:       row.AtWork,
		})
	}

	return MonthlyReportResponse{
		Month:       r.Period.Month,
		Year:        r.Period.Year,
		Period:      r.Period.Prefix(),
		GeneratedAt: generatedAt.Format(time.RFC3339),
		Employees:   rows,
		Totals: TotalsResponse{
			TotalHours:   r.Totals.TotalHours,
			RegularHours: r.Totals.RegularHours,
			HolidayHours: r.Totals.HolidayHours,
			Days:         r.Totals.Days,
			VacationDays: r.Totals.VacationDays,
			HolidayBonus: r.Totals.HolidayBonus,
			Wage:         r.Totals.Wage,
		},
	}
}

// ========================================
// EMPLOYEE DETAIL REPORT
// ========================================

type EmployeeReportRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

func (r *EmployeeReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}
	if err := validatePeriod(r.Month, r.Year); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r EmployeeReportRequest) Period() Period {
	return Period{Month: r.Month, Year: r.Year}
}

type EmployeeDetailResponse struct {
	EmployeeID   string                `json:"employee_id"`
	Name         string                `json:"name"`
	Role         string                `json:"role"`
	HourlyRate   decimal.Decimal       `json:"hourly_rate"`
	Period       string                `json:"period"`
	TotalHours   decimal.Decimal       `json:"total_hours"`
	TotalWage    decimal.Decimal       `json:"total_wage"`
	VacationDays int                   `json:"vacation_days"`
	Entries      []EntryDetailResponse `json:"entries"`
}

type EntryDetailResponse struct {
	EntryID     string          `json:"entry_id"`
	Date        string          `json:"date"`
	HolidayName *string         `json:"holiday_name"`
	ClockIn     *string         `json:"clock_in"`
	ClockOut    *string         `json:"clock_out"`
	BreakTaken  bool            `json:"break_taken"`
	Hours       decimal.Decimal `json:"hours"`
	Multiplier  int             `json:"multiplier"`
	Wage        decimal.Decimal `json:"wage"`
}

func NewEmployeeDetailResponse(d EmployeeDetail) EmployeeDetailResponse {
	entries := make([]EntryDetailResponse, 0, len(d.Entries))
	for _, e := range d.Entries {
		var holidayName *string
		if e.HolidayName != "" {
			name := e.HolidayName
			holidayName = &name
		}
		entries = append(entries, EntryDetailResponse{
			EntryID:     e.EntryID,
			Date:        e.Date,
			HolidayName: holidayName,
			ClockIn:     e.ClockIn,
			ClockOut:    e.ClockOut,
			BreakTaken:  e.BreakTaken,
			Hours:       e.Hours,
			Multiplier:  e.Multiplier,
			Wage:        e.Wage,
		})
	}

	return EmployeeDetailResponse{
		EmployeeID:   d.EmployeeID,
		Name:         d.Name,
		Role:         d.Role,
		HourlyRate:   d.HourlyRate,
		Period:       d.Period.Prefix(),
		TotalHours:   d.TotalHours,
		TotalWage:    d.TotalWage,
		VacationDays: d.VacationDays,
		Entries:      entries,
	}
}

// ========================================
// UNCLOSED ENTRIES / AT WORK
// ========================================

type UnclosedEntryResponse struct {
	EntryID      string `json:"entry_id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Date         string `json:"date"`
	ClockIn      string `json:"clock_in"`
}

func NewUnclosedEntryResponse(u UnclosedEntry) UnclosedEntryResponse {
	return UnclosedEntryResponse(u)
}

// CloseUnclosedRequest closes an unclosed entry; Time defaults to 23:59.
type CloseUnclosedRequest struct {
	EntryID string `json:"-"`
	Time    string `json:"time"`
}

func (r *CloseUnclosedRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EntryID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}

	if r.Time == "" {
		r.Time = DefaultCloseTime
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

type AtWorkResponse struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	EntryID      string `json:"entry_id"`
	ClockIn      string `json:"clock_in"`
}

func NewAtWorkResponse(a AtWork) AtWorkResponse {
	return AtWorkResponse(a)
}

// ========================================
// WAGE CALCULATOR
// ========================================

// WageCalculatorRequest is a what-if pay calculation that touches no
// records. OvertimeMultiplier defaults to 1.5 when omitted.
type WageCalculatorRequest struct {
	Hours              decimal.Decimal  `json:"hours"`
	HourlyRate         decimal.Decimal  `json:"hourly_rate"`
	OvertimeHours      decimal.Decimal  `json:"overtime_hours"`
	OvertimeMultiplier *decimal.Decimal `json:"overtime_multiplier"`
	Deductions         decimal.Decimal  `json:"deductions"`
}

func (r *WageCalculatorRequest) Validate() error {
	var errs validator.ValidationErrors

	for _, f := range []struct {
		field string
		value decimal.Decimal
	}{
		{"hours", r.Hours},
		{"hourly_rate", r.HourlyRate},
		{"overtime_hours", r.OvertimeHours},
		{"deductions", r.Deductions},
	} {
		if f.value.IsNegative() {
			errs = append(errs, validator.ValidationError{
				Field:   f.field,
				Message: f.field + " must not be negative",
			})
		}
	}

	if r.OvertimeMultiplier == nil {
		m := worktime.DefaultOvertimeMultiplier
		r.OvertimeMultiplier = &m
	}
	if r.OvertimeMultiplier.LessThan(decimal.NewFromInt(1)) {
		errs = append(errs, validator.ValidationError{
			Field:   "overtime_multiplier",
			Message: ErrInvalidMultiplier.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type WageCalculatorResponse struct {
	Hours              decimal.Decimal `json:"hours"`
	HourlyRate         decimal.Decimal `json:"hourly_rate"`
	OvertimeHours      decimal.Decimal `json:"overtime_hours"`
	OvertimeMultiplier decimal.Decimal `json:"overtime_multiplier"`
	RegularPay         decimal.Decimal `json:"regular_pay"`
	OvertimePay        decimal.Decimal `json:"overtime_pay"`
	GrossPay           decimal.Decimal `json:"gross_pay"`
	Deductions         decimal.Decimal `json:"deductions"`
	NetPay             decimal.Decimal `json:"net_pay"`
}

func NewWageCalculatorResponse(req WageCalculatorRequest, w worktime.WageBreakdown) WageCalculatorResponse {
	return WageCalculatorResponse{
		Hours:              req.Hours,
		HourlyRate:         req.HourlyRate,
		OvertimeHours:      req.OvertimeHours,
		OvertimeMultiplier: *req.OvertimeMultiplier,
		RegularPay:         w.RegularPay,
		OvertimePay:        w.OvertimePay,
		GrossPay:           w.GrossPay,
		Deductions:         w.Deductions,
		NetPay:             w.NetPay,
	}
}
