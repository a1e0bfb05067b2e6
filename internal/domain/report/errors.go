package report

import "errors"

var (
	ErrInvalidMonth     = errors.New("month must be between 0 and 11")
	ErrInvalidYear      = errors.New("year must be a valid year")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEntryNotUnclosed = errors.New("time entry is not unclosed")
	ErrExportFailed     = errors.New("failed to build export")

	ErrInvalidMultiplier = errors.New("overtime_multiplier must be at least 1")
)
