package report

import (
	"sort"
	"strings"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/holiday"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/report"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/vacation"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/worktime"
	"github.com/shopspring/decimal"
)

// Snapshot is the full data set the aggregations run over.
type Snapshot struct {
	Employees    []employee.Employee
	Entries      []timeentry.TimeEntry
	VacationDays []vacation.VacationDay
	Holidays     []holiday.Holiday
}

// Monthly builds one row per employee for period p. Only entries dated in
// the period with both clock times set are counted. today ("YYYY-MM-DD")
// drives the at-work flag.
func Monthly(s Snapshot, p report.Period, today string) report.MonthlyReport {
	prefix := p.Prefix()
	holidays := holiday.Index(s.Holidays)

	type minutes struct {
		regular, holiday, days int
	}
	worked := make(map[string]*minutes, len(s.Employees))
	atWork := make(map[string]bool)

	for _, e := range s.Entries {
		if e.DateString() == today && e.IsOpen() {
			atWork[e.EmployeeID] = true
		}
		if !e.IsComplete() || !strings.HasPrefix(e.DateString(), prefix) {
			continue
		}

		m, ok := worked[e.EmployeeID]
		if !ok {
			m = &minutes{}
			worked[e.EmployeeID] = m
		}
		if _, isHoliday := holidays[e.DateString()]; isHoliday {
			m.holiday += e.WorkedMinutes()
		} else {
			m.regular += e.WorkedMinutes()
		}
		m.days++
	}

	vacationDays := make(map[string]int)
	for _, v := range s.VacationDays {
		if strings.HasPrefix(v.DateString(), prefix) {
			vacationDays[v.EmployeeID]++
		}
	}

	out := report.MonthlyReport{
		Period: p,
		Rows:   make([]report.EmployeeRow, 0, len(s.Employees)),
		Totals: report.Totals{
			TotalHours:   decimal.Zero,
			RegularHours: decimal.Zero,
			HolidayHours: decimal.Zero,
			HolidayBonus: decimal.Zero,
			Wage:         decimal.Zero,
		},
	}

	for _, emp := range s.Employees {
		var m minutes
		if w, ok := worked[emp.ID]; ok {
			m = *w
		}

		row := report.EmployeeRow{
			EmployeeID:   emp.ID,
			Name:         emp.Name,
			Role:         emp.Role,
			TotalHours:   worktime.Round(worktime.MinutesToHours(m.regular + m.holiday)),
			RegularHours: worktime.Round(worktime.MinutesToHours(m.regular)),
			HolidayHours: worktime.Round(worktime.MinutesToHours(m.holiday)),
			Days:         m.days,
			VacationDays: vacationDays[emp.ID],
			HourlyRate:   emp.HourlyRate,
			Wage: worktime.Round(
				worktime.Pay(m.regular, emp.HourlyRate, 1).
					Add(worktime.Pay(m.holiday, emp.HourlyRate, report.HolidayMultiplier)),
			),
			HolidayBonus: worktime.Round(worktime.Pay(m.holiday, emp.HourlyRate, report.HolidayMultiplier-1)),
			AtWork:       atWork[emp.ID],
		}

		out.Rows = append(out.Rows, row)
		out.Totals = out.Totals.Add(row)
	}

	return out
}

// EmployeeDetail lists every entry of one employee in period p, newest
// first. Incomplete entries are listed with zero hours and wage and are left
// out of the totals. The bool is false when the employee does not exist.
func EmployeeDetail(s Snapshot, employeeID string, p report.Period) (report.EmployeeDetail, bool) {
	emp, ok := employee.Find(s.Employees, employeeID)
	if !ok {
		return report.EmployeeDetail{}, false
	}

	prefix := p.Prefix()
	holidays := holiday.Index(s.Holidays)

	var entries []timeentry.TimeEntry
	for _, e := range s.Entries {
		if e.EmployeeID == employeeID && strings.HasPrefix(e.DateString(), prefix) {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	detail := report.EmployeeDetail{
		Period:     p,
		EmployeeID: emp.ID,
		Name:       emp.Name,
		Role:       emp.Role,
		HourlyRate: emp.HourlyRate,
		Entries:    make([]report.EntryDetail, 0, len(entries)),
		TotalHours: decimal.Zero,
		TotalWage:  decimal.Zero,
	}

	for _, e := range entries {
		d := report.EntryDetail{
			EntryID:    e.ID,
			Date:       e.DateString(),
			ClockIn:    e.ClockIn,
			ClockOut:   e.ClockOut,
			BreakTaken: e.BreakTaken,
			Complete:   e.IsComplete(),
			Multiplier: 1,
			Hours:      decimal.Zero,
			Wage:       decimal.Zero,
		}
		if h, isHoliday := holidays[d.Date]; isHoliday {
			d.HolidayName = h.Name
			d.Multiplier = report.HolidayMultiplier
		}
		if d.Complete {
			minutes := e.WorkedMinutes()
			d.Hours = worktime.Round(worktime.MinutesToHours(minutes))
			d.Wage = worktime.Round(worktime.Pay(minutes, emp.HourlyRate, int64(d.Multiplier)))
			detail.TotalHours = detail.TotalHours.Add(d.Hours)
			detail.TotalWage = detail.TotalWage.Add(d.Wage)
		}
		detail.Entries = append(detail.Entries, d)
	}

	for _, v := range s.VacationDays {
		if v.EmployeeID == employeeID && strings.HasPrefix(v.DateString(), prefix) {
			detail.VacationDays++
		}
	}

	return detail, true
}

// Unclosed returns open entries dated strictly before today, in snapshot order.
func Unclosed(s Snapshot, today string) []report.UnclosedEntry {
	out := make([]report.UnclosedEntry, 0)
	for _, e := range s.Entries {
		if !e.IsOpen() || e.DateString() >= today {
			continue
		}
		out = append(out, report.UnclosedEntry{
			EntryID:      e.ID,
			EmployeeID:   e.EmployeeID,
			EmployeeName: employee.NameOf(s.Employees, e.EmployeeID),
			Date:         e.DateString(),
			ClockIn:      *e.ClockIn,
		})
	}
	return out
}

// AtWork returns employees with an open entry dated today, in employee
// order. An employee with several open entries is reported once, with the
// latest clock-in.
func AtWork(s Snapshot, today string) []report.AtWork {
	open := make(map[string]timeentry.TimeEntry)
	for _, e := range s.Entries {
		if e.DateString() != today || !e.IsOpen() {
			continue
		}
		if cur, ok := open[e.EmployeeID]; !ok || *e.ClockIn > *cur.ClockIn {
			open[e.EmployeeID] = e
		}
	}

	out := make([]report.AtWork, 0, len(open))
	for _, emp := range s.Employees {
		e, ok := open[emp.ID]
		if !ok {
			continue
		}
		out = append(out, report.AtWork{
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			EntryID:      e.ID,
			ClockIn:      *e.ClockIn,
		})
	}
	return out
}
