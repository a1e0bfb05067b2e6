package vacation

import "context"

type VacationService interface {
	List(ctx context.Context, req ListVacationRequest) ([]VacationDayResponse, error)
	Create(ctx context.Context, req CreateVacationRequest) (VacationDayResponse, error)
	Delete(ctx context.Context, id string) error
}
