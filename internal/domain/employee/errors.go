package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrNegativeRate     = errors.New("hourly rate must not be negative")
)
