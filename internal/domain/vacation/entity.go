package vacation

import "time"

type Type string

const (
	TypeVacation Type = "vacation"
	TypeSick     Type = "sick"
	TypePersonal Type = "personal"
)

var Types = []string{string(TypeVacation), string(TypeSick), string(TypePersonal)}

type VacationDay struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Type       Type
	CreatedAt  time.Time
}

func (v VacationDay) DateString() string {
	return v.Date.Format("2006-01-02")
}

type VacationFilter struct {
	EmployeeID string
	// Prefix restricts to dates starting with "YYYY-MM" when set
	Prefix string
}
