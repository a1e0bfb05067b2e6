package http

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/holiday"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/report"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/vacation"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/worktime"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memoryEmployeeRepo struct {
	mu        sync.Mutex
	employees map[string]employee.Employee
}

func newMemoryEmployeeRepo(seed ...employee.Employee) *memoryEmployeeRepo {
	r := &memoryEmployeeRepo{employees: make(map[string]employee.Employee)}
	for _, e := range seed {
		r.employees[e.ID] = e
	}
	return r
}

func (r *memoryEmployeeRepo) List(ctx context.Context) ([]employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]employee.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *memoryEmployeeRepo) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now()
	r.employees[e.ID] = e
	return e, nil
}

func (r *memoryEmployeeRepo) UpdateRate(ctx context.Context, id string, rate decimal.Decimal) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	e.HourlyRate = rate
	r.employees[id] = e
	return e, nil
}

type memoryTimeEntryRepo struct {
	mu      sync.Mutex
	entries map[string]timeentry.TimeEntry
}

func newMemoryTimeEntryRepo() *memoryTimeEntryRepo {
	return &memoryTimeEntryRepo{entries: make(map[string]timeentry.TimeEntry)}
}

func (r *memoryTimeEntryRepo) List(ctx context.Context) ([]timeentry.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]timeentry.TimeEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *memoryTimeEntryRepo) GetByID(ctx context.Context, id string) (timeentry.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
	}
	return e, nil
}

func (r *memoryTimeEntryRepo) Create(ctx context.Context, e timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now()
	r.entries[e.ID] = e
	return e, nil
}

func (r *memoryTimeEntryRepo) Update(ctx context.Context, id string, patch timeentry.Patch) (timeentry.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
	}
	if patch.ClockOut != nil {
		e.ClockOut = patch.ClockOut
	}
	if patch.BreakTaken != nil {
		e.BreakTaken = *patch.BreakTaken
	}
	r.entries[id] = e
	return e, nil
}

type stubVacationService struct {
	lastList vacation.ListVacationRequest
}

func (s *stubVacationService) List(ctx context.Context, req vacation.ListVacationRequest) ([]vacation.VacationDayResponse, error) {
	s.lastList = req
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return []vacation.VacationDayResponse{}, nil
}

func (s *stubVacationService) Create(ctx context.Context, req vacation.CreateVacationRequest) (vacation.VacationDayResponse, error) {
	return vacation.VacationDayResponse{}, nil
}

func (s *stubVacationService) Delete(ctx context.Context, id string) error {
	return vacation.ErrVacationDayNotFound
}

type stubHolidayService struct {
	imported []byte
}

func (s *stubHolidayService) List(ctx context.Context) ([]holiday.HolidayResponse, error) {
	return []holiday.HolidayResponse{}, nil
}

func (s *stubHolidayService) Create(ctx context.Context, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	return holiday.HolidayResponse{}, holiday.ErrHolidayDateExists
}

func (s *stubHolidayService) Delete(ctx context.Context, id string) error {
	return nil
}

func (s *stubHolidayService) Import(ctx context.Context, r io.Reader) (holiday.ImportResponse, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return holiday.ImportResponse{}, err
	}
	s.imported = b
	return holiday.ImportResponse{Imported: 1}, nil
}

type stubReportService struct {
	lastMonthly report.MonthlyReportRequest
	lastClose   report.CloseUnclosedRequest
	lastWage    report.WageCalculatorRequest
}

func (s *stubReportService) Monthly(ctx context.Context, req report.MonthlyReportRequest) (report.MonthlyReportResponse, error) {
	s.lastMonthly = req
	if err := req.Validate(); err != nil {
		return report.MonthlyReportResponse{}, err
	}
	return report.MonthlyReportResponse{}, nil
}

func (s *stubReportService) ExportMonthly(ctx context.Context, req report.MonthlyReportRequest) (report.ExportFile, error) {
	return report.ExportFile{
		FileName:    "payroll_January_2025.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     []byte("xlsx"),
	}, nil
}

func (s *stubReportService) EmployeeDetail(ctx context.Context, req report.EmployeeReportRequest) (report.EmployeeDetailResponse, error) {
	return report.EmployeeDetailResponse{}, report.ErrEmployeeNotFound
}

func (s *stubReportService) ExportEmployeeDetail(ctx context.Context, req report.EmployeeReportRequest) (report.ExportFile, error) {
	return report.ExportFile{}, report.ErrEmployeeNotFound
}

func (s *stubReportService) Unclosed(ctx context.Context) ([]report.UnclosedEntryResponse, error) {
	return []report.UnclosedEntryResponse{}, nil
}

func (s *stubReportService) CloseUnclosed(ctx context.Context, req report.CloseUnclosedRequest) (timeentry.TimeEntryResponse, error) {
	s.lastClose = req
	return timeentry.TimeEntryResponse{ID: req.EntryID}, nil
}

func (s *stubReportService) AtWork(ctx context.Context) ([]report.AtWorkResponse, error) {
	return []report.AtWorkResponse{}, nil
}

func (s *stubReportService) CalculateWage(ctx context.Context, req report.WageCalculatorRequest) (report.WageCalculatorResponse, error) {
	if err := req.Validate(); err != nil {
		return report.WageCalculatorResponse{}, err
	}
	s.lastWage = req
	w := worktime.CalculateWage(req.Hours, req.HourlyRate, req.OvertimeHours, *req.OvertimeMultiplier, req.Deductions)
	return report.NewWageCalculatorResponse(req, w), nil
}
