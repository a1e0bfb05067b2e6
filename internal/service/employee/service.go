package employee

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/cache"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	employees    *cache.Collection[employee.Employee]
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository, employees *cache.Collection[employee.Employee]) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		employees:    employees,
	}
}

// List implements employee.EmployeeService.
func (s *EmployeeServiceImpl) List(ctx context.Context) ([]employee.EmployeeResponse, error) {
	employees, err := s.employees.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}

	out := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, employee.NewEmployeeResponse(e))
	}
	return out, nil
}

// Get implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Get(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	employees, err := s.employees.Get(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to load employees: %w", err)
	}

	e, ok := employee.Find(employees, id)
	if !ok {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}
	return employee.NewEmployeeResponse(e), nil
}

// Create implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		Name:       strings.TrimSpace(req.Name),
		Role:       strings.TrimSpace(req.Role),
		HourlyRate: req.HourlyRate.Round(2),
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	s.employees.Invalidate()

	slog.Info("Employee created", "employee_id", created.ID)
	return employee.NewEmployeeResponse(created), nil
}

// UpdateRate implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateRate(ctx context.Context, req employee.UpdateRateRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	updated, err := s.employeeRepo.UpdateRate(ctx, req.ID, req.HourlyRate.Round(2))
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	s.employees.Invalidate()

	slog.Info("Hourly rate updated", "employee_id", updated.ID, "hourly_rate", updated.HourlyRate.String())
	return employee.NewEmployeeResponse(updated), nil
}
