package vacation

import "context"

type VacationRepository interface {
	// List returns every vacation day, newest first
	List(ctx context.Context) ([]VacationDay, error)
	Create(ctx context.Context, day VacationDay) (VacationDay, error)
	Delete(ctx context.Context, id string) error
}
