package vacation

import "errors"

var (
	ErrVacationDayNotFound = errors.New("vacation day not found")
	ErrInvalidType         = errors.New("type must be one of vacation, sick, personal")
)
