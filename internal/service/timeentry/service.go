package timeentry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/cache"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/worktime"
)

type TimeEntryServiceImpl struct {
	entryRepo    timeentry.TimeEntryRepository
	employeeRepo employee.EmployeeRepository
	entries      *cache.Collection[timeentry.TimeEntry]
}

func NewTimeEntryService(
	entryRepo timeentry.TimeEntryRepository,
	employeeRepo employee.EmployeeRepository,
	entries *cache.Collection[timeentry.TimeEntry],
) timeentry.TimeEntryService {
	return &TimeEntryServiceImpl{
		entryRepo:    entryRepo,
		employeeRepo: employeeRepo,
		entries:      entries,
	}
}

// ClockIn implements timeentry.TimeEntryService. A second clock-in on the
// same day is accepted; replayed offline actions must never be rejected.
func (s *TimeEntryServiceImpl) ClockIn(ctx context.Context, req timeentry.ClockInRequest) (timeentry.TimeEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.TimeEntryResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return timeentry.TimeEntryResponse{}, err
	}

	date, _ := time.Parse(timeentry.DateLayout, req.Date)
	clockIn, _ := worktime.NormalizeClock(req.Time)

	created, err := s.entryRepo.Create(ctx, timeentry.TimeEntry{
		EmployeeID: req.EmployeeID,
		Date:       date,
		ClockIn:    &clockIn,
	})
	if err != nil {
		return timeentry.TimeEntryResponse{}, err
	}
	s.entries.Invalidate()

	slog.Info("Clocked in", "employee_id", created.EmployeeID, "entry_id", created.ID, "date", req.Date, "time", clockIn)
	return timeentry.NewTimeEntryResponse(created), nil
}

// ClockOut implements timeentry.TimeEntryService. Clocking out an entry
// that is already closed overwrites the clock-out time.
func (s *TimeEntryServiceImpl) ClockOut(ctx context.Context, req timeentry.ClockOutRequest) (timeentry.TimeEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.TimeEntryResponse{}, err
	}

	entry, err := s.entryRepo.GetByID(ctx, req.ID)
	if err != nil {
		return timeentry.TimeEntryResponse{}, err
	}
	if entry.ClockIn == nil {
		return timeentry.TimeEntryResponse{}, timeentry.ErrNotClockedIn
	}
	if entry.ClockOut != nil {
		slog.Warn("Clock-out overwrites existing value", "entry_id", entry.ID, "previous", *entry.ClockOut)
	}

	clockOut, _ := worktime.NormalizeClock(req.Time)
	updated, err := s.entryRepo.Update(ctx, req.ID, timeentry.Patch{ClockOut: &clockOut})
	if err != nil {
		return timeentry.TimeEntryResponse{}, err
	}
	s.entries.Invalidate()

	slog.Info("Clocked out", "employee_id", updated.EmployeeID, "entry_id", updated.ID, "time", clockOut)
	return timeentry.NewTimeEntryResponse(updated), nil
}

// SetBreak implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) SetBreak(ctx context.Context, req timeentry.SetBreakRequest) (timeentry.TimeEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.TimeEntryResponse{}, err
	}

	updated, err := s.entryRepo.Update(ctx, req.ID, timeentry.Patch{BreakTaken: req.BreakTaken})
	if err != nil {
		return timeentry.TimeEntryResponse{}, err
	}
	s.entries.Invalidate()

	return timeentry.NewTimeEntryResponse(updated), nil
}

// List implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) List(ctx context.Context, filter timeentry.TimeEntryFilter) ([]timeentry.TimeEntryResponse, error) {
	entries, err := s.entries.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load time entries: %w", err)
	}

	out := make([]timeentry.TimeEntryResponse, 0)
	for _, e := range entries {
		if filter.Matches(e) {
			out = append(out, timeentry.NewTimeEntryResponse(e))
		}
	}
	return out, nil
}

// FindOpen implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) FindOpen(ctx context.Context, employeeID, date string) (timeentry.TimeEntryResponse, error) {
	entries, err := s.entries.Get(ctx)
	if err != nil {
		return timeentry.TimeEntryResponse{}, fmt.Errorf("failed to load time entries: %w", err)
	}

	filter := timeentry.TimeEntryFilter{EmployeeID: employeeID, Date: date}
	var open *timeentry.TimeEntry
	for i, e := range entries {
		if !filter.Matches(e) || !e.IsOpen() {
			continue
		}
		if open == nil || *e.ClockIn > *open.ClockIn {
			open = &entries[i]
		}
	}
	if open == nil {
		return timeentry.TimeEntryResponse{}, timeentry.ErrNoOpenEntry
	}
	return timeentry.NewTimeEntryResponse(*open), nil
}
