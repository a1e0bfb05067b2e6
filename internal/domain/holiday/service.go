package holiday

import (
	"context"
	"io"
)

type HolidayService interface {
	List(ctx context.Context) ([]HolidayResponse, error)
	Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	Delete(ctx context.Context, id string) error

	// Import reads an xlsx workbook with date and name columns and creates
	// all rows in one transaction
	Import(ctx context.Context, r io.Reader) (ImportResponse, error)
}
