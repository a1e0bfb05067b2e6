package vacation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-go/internal/domain/vacation"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/cache"
)

type VacationServiceImpl struct {
	vacationRepo vacation.VacationRepository
	employeeRepo employee.EmployeeRepository
	days         *cache.Collection[vacation.VacationDay]
}

func NewVacationService(
	vacationRepo vacation.VacationRepository,
	employeeRepo employee.EmployeeRepository,
	days *cache.Collection[vacation.VacationDay],
) vacation.VacationService {
	return &VacationServiceImpl{
		vacationRepo: vacationRepo,
		employeeRepo: employeeRepo,
		days:         days,
	}
}

// List implements vacation.VacationService.
func (s *VacationServiceImpl) List(ctx context.Context, req vacation.ListVacationRequest) ([]vacation.VacationDayResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	days, err := s.days.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load vacation days: %w", err)
	}

	filter := req.Filter()
	out := make([]vacation.VacationDayResponse, 0)
	for _, d := range days {
		if filter.EmployeeID != "" && d.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Prefix != "" && !strings.HasPrefix(d.DateString(), filter.Prefix) {
			continue
		}
		out = append(out, vacation.NewVacationDayResponse(d))
	}
	return out, nil
}

// Create implements vacation.VacationService.
func (s *VacationServiceImpl) Create(ctx context.Context, req vacation.CreateVacationRequest) (vacation.VacationDayResponse, error) {
	if err := req.Validate(); err != nil {
		return vacation.VacationDayResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return vacation.VacationDayResponse{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	created, err := s.vacationRepo.Create(ctx, vacation.VacationDay{
		EmployeeID: req.EmployeeID,
		Date:       date,
		Type:       vacation.Type(req.Type),
	})
	if err != nil {
		return vacation.VacationDayResponse{}, err
	}
	s.days.Invalidate()

	slog.Info("Vacation day added", "employee_id", created.EmployeeID, "date", req.Date, "type", req.Type)
	return vacation.NewVacationDayResponse(created), nil
}

// Delete implements vacation.VacationService.
func (s *VacationServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.vacationRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.days.Invalidate()
	return nil
}
