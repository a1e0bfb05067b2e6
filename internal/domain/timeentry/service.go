package timeentry

import "context"

type TimeEntryService interface {
	ClockIn(ctx context.Context, req ClockInRequest) (TimeEntryResponse, error)
	ClockOut(ctx context.Context, req ClockOutRequest) (TimeEntryResponse, error)
	SetBreak(ctx context.Context, req SetBreakRequest) (TimeEntryResponse, error)
	List(ctx context.Context, filter TimeEntryFilter) ([]TimeEntryResponse, error)

	// FindOpen returns the most recent open entry of an employee on a date
	FindOpen(ctx context.Context, employeeID, date string) (TimeEntryResponse, error)
}
