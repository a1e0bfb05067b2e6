package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID         string
	Name       string
	Role       string
	HourlyRate decimal.Decimal
	CreatedAt  time.Time
}

// UnknownName is shown when an entry references an employee that is missing.
const UnknownName = "Unknown"

// NameOf returns the name of the employee with id, or UnknownName.
func NameOf(employees []Employee, id string) string {
	if emp, ok := Find(employees, id); ok {
		return emp.Name
	}
	return UnknownName
}

// Find looks an employee up by id.
func Find(employees []Employee, id string) (Employee, bool) {
	for _, emp := range employees {
		if emp.ID == id {
			return emp, true
		}
	}
	return Employee{}, false
}
