package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/holiday"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/report"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/vacation"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/cache"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/worktime"
	"golang.org/x/sync/errgroup"
)

// Sources are the cached collections a report is computed from.
type Sources struct {
	Employees    cache.Reader[employee.Employee]
	Entries      cache.Reader[timeentry.TimeEntry]
	VacationDays cache.Reader[vacation.VacationDay]
	Holidays     cache.Reader[holiday.Holiday]
}

type ReportServiceImpl struct {
	sources          Sources
	timeEntryService timeentry.TimeEntryService
	now              func() time.Time
}

// NewReportService creates the report service. now supplies the current time
// in the business timezone and decides what "today" is.
func NewReportService(sources Sources, timeEntryService timeentry.TimeEntryService, now func() time.Time) report.ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportServiceImpl{
		sources:          sources,
		timeEntryService: timeEntryService,
		now:              now,
	}
}

func (s *ReportServiceImpl) today() string {
	return s.now().Format(timeentry.DateLayout)
}

// snapshot loads all four collections concurrently.
func (s *ReportServiceImpl) snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := s.sources.Employees.Get(gctx)
		if err != nil {
			return fmt.Errorf("load employees: %w", err)
		}
		snap.Employees = items
		return nil
	})
	g.Go(func() error {
		items, err := s.sources.Entries.Get(gctx)
		if err != nil {
			return fmt.Errorf("load time entries: %w", err)
		}
		snap.Entries = items
		return nil
	})
	g.Go(func() error {
		items, err := s.sources.VacationDays.Get(gctx)
		if err != nil {
			return fmt.Errorf("load vacation days: %w", err)
		}
		snap.VacationDays = items
		return nil
	})
	g.Go(func() error {
		items, err := s.sources.Holidays.Get(gctx)
		if err != nil {
			return fmt.Errorf("load holidays: %w", err)
		}
		snap.Holidays = items
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Monthly implements report.ReportService.
func (s *ReportServiceImpl) Monthly(ctx context.Context, req report.MonthlyReportRequest) (report.MonthlyReportResponse, error) {
	if err := req.Validate(); err != nil {
		return report.MonthlyReportResponse{}, err
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return report.MonthlyReportResponse{}, err
	}

	r := Monthly(snap, req.Period(), s.today())
	return report.NewMonthlyReportResponse(r, s.now()), nil
}

// ExportMonthly implements report.ReportService.
func (s *ReportServiceImpl) ExportMonthly(ctx context.Context, req report.MonthlyReportRequest) (report.ExportFile, error) {
	if err := req.Validate(); err != nil {
		return report.ExportFile{}, err
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return report.ExportFile{}, err
	}

	r := Monthly(snap, req.Period(), s.today())
	file, err := render(PayrollFileName(r.Period), PayrollTable(r))
	if err != nil {
		return report.ExportFile{}, err
	}

	slog.Info("Payroll exported", "period", r.Period.Prefix(), "employees", len(r.Rows), "bytes", len(file.Content))
	return file, nil
}

// EmployeeDetail implements report.ReportService.
func (s *ReportServiceImpl) EmployeeDetail(ctx context.Context, req report.EmployeeReportRequest) (report.EmployeeDetailResponse, error) {
	detail, err := s.employeeDetail(ctx, req)
	if err != nil {
		return report.EmployeeDetailResponse{}, err
	}
	return report.NewEmployeeDetailResponse(detail), nil
}

// ExportEmployeeDetail implements report.ReportService.
func (s *ReportServiceImpl) ExportEmployeeDetail(ctx context.Context, req report.EmployeeReportRequest) (report.ExportFile, error) {
	detail, err := s.employeeDetail(ctx, req)
	if err != nil {
		return report.ExportFile{}, err
	}
	return render(DetailFileName(detail.Name, detail.Period), DetailTable(detail))
}

func (s *ReportServiceImpl) employeeDetail(ctx context.Context, req report.EmployeeReportRequest) (report.EmployeeDetail, error) {
	if err := req.Validate(); err != nil {
		return report.EmployeeDetail{}, err
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return report.EmployeeDetail{}, err
	}

	detail, ok := EmployeeDetail(snap, req.EmployeeID, req.Period())
	if !ok {
		return report.EmployeeDetail{}, report.ErrEmployeeNotFound
	}
	return detail, nil
}

// Unclosed implements report.ReportService.
func (s *ReportServiceImpl) Unclosed(ctx context.Context) ([]report.UnclosedEntryResponse, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	entries := Unclosed(snap, s.today())
	out := make([]report.UnclosedEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, report.NewUnclosedEntryResponse(e))
	}
	return out, nil
}

// CloseUnclosed implements report.ReportService.
func (s *ReportServiceImpl) CloseUnclosed(ctx context.Context, req report.CloseUnclosedRequest) (timeentry.TimeEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.TimeEntryResponse{}, err
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return timeentry.TimeEntryResponse{}, err
	}

	found := false
	for _, u := range Unclosed(snap, s.today()) {
		if u.EntryID == req.EntryID {
			found = true
			break
		}
	}
	if !found {
		return timeentry.TimeEntryResponse{}, report.ErrEntryNotUnclosed
	}

	closed, err := s.timeEntryService.ClockOut(ctx, timeentry.ClockOutRequest{ID: req.EntryID, Time: req.Time})
	if err != nil {
		return timeentry.TimeEntryResponse{}, fmt.Errorf("close entry %s: %w", req.EntryID, err)
	}

	slog.Info("Unclosed entry closed", "entry_id", req.EntryID, "time", req.Time)
	return closed, nil
}

// AtWork implements report.ReportService.
func (s *ReportServiceImpl) AtWork(ctx context.Context) ([]report.AtWorkResponse, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	atWork := AtWork(snap, s.today())
	out := make([]report.AtWorkResponse, 0, len(atWork))
	for _, a := range atWork {
		out = append(out, report.NewAtWorkResponse(a))
	}
	return out, nil
}

// CalculateWage implements report.ReportService.
func (s *ReportServiceImpl) CalculateWage(ctx context.Context, req report.WageCalculatorRequest) (report.WageCalculatorResponse, error) {
	if err := req.Validate(); err != nil {
		return report.WageCalculatorResponse{}, err
	}

	w := worktime.CalculateWage(req.Hours, req.HourlyRate, req.OvertimeHours, *req.OvertimeMultiplier, req.Deductions)
	return report.NewWageCalculatorResponse(req, w), nil
}
