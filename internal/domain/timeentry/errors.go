package timeentry

import "errors"

var (
	ErrTimeEntryNotFound = errors.New("time entry not found")
	ErrNoOpenEntry       = errors.New("no open time entry for employee on date")
	ErrNotClockedIn      = errors.New("time entry has no clock-in")
	ErrEmptyPatch        = errors.New("no fields to update")
)
