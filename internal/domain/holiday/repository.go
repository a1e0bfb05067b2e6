package holiday

import "context"

type HolidayRepository interface {
	// List returns every holiday ordered by date
	List(ctx context.Context) ([]Holiday, error)
	Create(ctx context.Context, h Holiday) (Holiday, error)
	Delete(ctx context.Context, id string) error
}
