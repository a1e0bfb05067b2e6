package holiday

import "errors"

var (
	ErrHolidayNotFound    = errors.New("holiday not found")
	ErrHolidayDateExists  = errors.New("a holiday already exists on this date")
	ErrEmptyImport        = errors.New("import sheet contains no holidays")
	ErrInvalidImportSheet = errors.New("import sheet must have date and name columns")
)
