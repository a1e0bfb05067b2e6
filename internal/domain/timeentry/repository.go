package timeentry

import "context"

type TimeEntryRepository interface {
	// List returns every entry, newest date first
	List(ctx context.Context) ([]TimeEntry, error)
	GetByID(ctx context.Context, id string) (TimeEntry, error)
	Create(ctx context.Context, entry TimeEntry) (TimeEntry, error)

	// Update applies patch and returns the updated row
	Update(ctx context.Context, id string, patch Patch) (TimeEntry, error)
}
