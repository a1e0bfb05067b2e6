package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/report"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/spreadsheet"
)

// TotalLabel marks the synthetic totals row of an export.
const TotalLabel = "TOTAL"

var PayrollColumns = []string{
	"Employee",
	"Days worked",
	"Hours worked",
	"Holiday hours",
	"Vacation days",
	"Hourly rate",
	"Holiday bonus",
	"Wage",
}

var DetailColumns = []string{
	"Date",
	"Holiday",
	"Clock in",
	"Clock out",
	"Break",
	"Hours",
	"Wage",
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

// PayrollTable flattens a monthly report into one row per employee plus a
// totals row. The hourly rate column of the totals row is left blank.
func PayrollTable(r report.MonthlyReport) spreadsheet.Table {
	rows := make([][]any, 0, len(r.Rows)+1)
	for _, row := range r.Rows {
		rows = append(rows, []any{
			row.Name,
			row.Days,
			row.TotalHours,
			row.HolidayHours,
			row.VacationDays,
			row.HourlyRate,
			row.HolidayBonus,
			row.Wage,
		})
	}
	rows = append(rows, []any{
		TotalLabel,
		r.Totals.Days,
		r.Totals.TotalHours,
		r.Totals.HolidayHours,
		r.Totals.VacationDays,
		nil,
		r.Totals.HolidayBonus,
		r.Totals.Wage,
	})

	return spreadsheet.Table{
		Sheet:   fmt.Sprintf("%s %d", r.Period.MonthName(), r.Period.Year),
		Columns: PayrollColumns,
		Rows:    rows,
	}
}

// DetailTable lists the counted (complete) entries of an employee detail
// report, followed by a totals row.
func DetailTable(d report.EmployeeDetail) spreadsheet.Table {
	rows := make([][]any, 0, len(d.Entries)+1)
	for _, e := range d.Entries {
		if !e.Complete {
			continue
		}
		breakTaken := "No"
		if e.BreakTaken {
			breakTaken = "Yes"
		}
		rows = append(rows, []any{
			e.Date,
			e.HolidayName,
			e.ClockIn,
			e.ClockOut,
			breakTaken,
			e.Hours,
			e.Wage,
		})
	}
	rows = append(rows, []any{TotalLabel, nil, nil, nil, nil, d.TotalHours, d.TotalWage})

	return spreadsheet.Table{
		Sheet:   fmt.Sprintf("%s %d", d.Period.MonthName(), d.Period.Year),
		Columns: DetailColumns,
		Rows:    rows,
	}
}

func PayrollFileName(p report.Period) string {
	return fmt.Sprintf("payroll_%s_%d.xlsx", p.MonthName(), p.Year)
}

func DetailFileName(name string, p report.Period) string {
	safe := strings.Trim(unsafeFileChars.ReplaceAllString(name, "_"), "_")
	if safe == "" {
		safe = "employee"
	}
	return fmt.Sprintf("attendance_%s_%s_%d.xlsx", safe, p.MonthName(), p.Year)
}

func render(name string, t spreadsheet.Table) (report.ExportFile, error) {
	content, err := spreadsheet.Write(t)
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("%w: %v", report.ErrExportFailed, err)
	}
	return report.ExportFile{
		FileName:    name,
		ContentType: spreadsheet.ContentType,
		Content:     content,
	}, nil
}
