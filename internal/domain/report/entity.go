package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// HolidayMultiplier is the pay multiplier for hours worked on a holiday.
const HolidayMultiplier = 2

// DefaultCloseTime is used when an unclosed entry is closed without a time.
const DefaultCloseTime = "23:59"

// Period is a calendar month. Month is zero-based (0 = January).
type Period struct {
	Month int
	Year  int
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()) - 1, Year: t.Year()}
}

// Prefix returns the "YYYY-MM" prefix shared by all dates in the period.
func (p Period) Prefix() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month+1)
}

func (p Period) MonthName() string {
	return time.Month(p.Month + 1).String()
}

// EmployeeRow is one employee's aggregated month.
type EmployeeRow struct {
	EmployeeID   string
	Name         string
	Role         string
	TotalHours   decimal.Decimal
	RegularHours decimal.Decimal
	HolidayHours decimal.Decimal
	Days         int
	VacationDays int
	HourlyRate   decimal.Decimal
	Wage         decimal.Decimal
	HolidayBonus decimal.Decimal
	AtWork       bool
}

// Totals is the column-wise sum of the rounded employee rows.
type Totals struct {
	TotalHours   decimal.Decimal
	RegularHours decimal.Decimal
	HolidayHours decimal.Decimal
	Days         int
	VacationDays int
	HolidayBonus decimal.Decimal
	Wage         decimal.Decimal
}

func (t Totals) Add(r EmployeeRow) Totals {
	return Totals{
		TotalHours:   t.TotalHours.Add(r.TotalHours),
		RegularHours: t.RegularHours.Add(r.RegularHours),
		HolidayHours: t.HolidayHours.Add(r.HolidayHours),
		Days:         t.Days + r.Days,
		VacationDays: t.VacationDays + r.VacationDays,
		HolidayBonus: t.HolidayBonus.Add(r.HolidayBonus),
		Wage:         t.Wage.Add(r.Wage),
	}
}

type MonthlyReport struct {
	Period Period
	Rows   []EmployeeRow
	Totals Totals
}

// EntryDetail is one time entry of an employee detail report.
type EntryDetail struct {
	EntryID     string
	Date        string
	HolidayName string
	ClockIn     *string
	ClockOut    *string
	BreakTaken  bool
	Complete    bool
	Hours       decimal.Decimal
	Multiplier  int
	Wage        decimal.Decimal
}

type EmployeeDetail struct {
	Period       Period
	EmployeeID   string
	Name         string
	Role         string
	HourlyRate   decimal.Decimal
	Entries      []EntryDetail
	TotalHours   decimal.Decimal
	TotalWage    decimal.Decimal
	VacationDays int
}

// UnclosedEntry is an entry dated before today that was never clocked out.
type UnclosedEntry struct {
	EntryID      string
	EmployeeID   string
	EmployeeName string
	Date         string
	ClockIn      string
}

// AtWork is an employee with an open entry today.
type AtWork struct {
	EmployeeID   string
	EmployeeName string
	EntryID      string
	ClockIn      string
}

// ExportFile is a rendered workbook ready for download.
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}
