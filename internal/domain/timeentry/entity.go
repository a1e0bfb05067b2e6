package timeentry

import (
	"time"

	"github.com/cmlabs-hris/timeclock-go/internal/pkg/worktime"
	"github.com/shopspring/decimal"
)

// DateLayout is the ISO calendar date used for entry dates.
const DateLayout = "2006-01-02"

type TimeEntry struct {
	ID         string
	EmployeeID string
	Date       time.Time
	ClockIn    *string
	ClockOut   *string
	BreakTaken bool
	CreatedAt  time.Time
}

func (e TimeEntry) DateString() string {
	return e.Date.Format(DateLayout)
}

// IsOpen reports whether the entry has been clocked in but not out.
func (e TimeEntry) IsOpen() bool {
	return e.ClockIn != nil && e.ClockOut == nil
}

// IsComplete reports whether both clock times are set.
func (e TimeEntry) IsComplete() bool {
	return e.ClockIn != nil && e.ClockOut != nil
}

// WorkedMinutes returns zero for incomplete entries.
func (e TimeEntry) WorkedMinutes() int {
	if !e.IsComplete() {
		return 0
	}
	return worktime.WorkedMinutes(*e.ClockIn, *e.ClockOut, e.BreakTaken)
}

func (e TimeEntry) Hours() decimal.Decimal {
	return worktime.MinutesToHours(e.WorkedMinutes())
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	ClockOut   *string
	BreakTaken *bool
}

func (p Patch) IsEmpty() bool {
	return p.ClockOut == nil && p.BreakTaken == nil
}

type TimeEntryFilter struct {
	EmployeeID string
	Date       string
}

// Matches reports whether e passes the filter; empty fields match anything.
func (f TimeEntryFilter) Matches(e TimeEntry) bool {
	if f.EmployeeID != "" && e.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Date != "" && e.DateString() != f.Date {
		return false
	}
	return true
}
