package holiday

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/holiday"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/cache"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/validator"
	"github.com/cmlabs-hris/timeclock-go/internal/repository/postgresql"
)

type HolidayServiceImpl struct {
	tx          postgresql.Transactor
	holidayRepo holiday.HolidayRepository
	holidays    *cache.Collection[holiday.Holiday]
}

func NewHolidayService(
	tx postgresql.Transactor,
	holidayRepo holiday.HolidayRepository,
	holidays *cache.Collection[holiday.Holiday],
) holiday.HolidayService {
	return &HolidayServiceImpl{
		tx:          tx,
		holidayRepo: holidayRepo,
		holidays:    holidays,
	}
}

// List implements holiday.HolidayService.
func (s *HolidayServiceImpl) List(ctx context.Context) ([]holiday.HolidayResponse, error) {
	holidays, err := s.holidays.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}

	out := make([]holiday.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		out = append(out, holiday.NewHolidayResponse(h))
	}
	return out, nil
}

// Create implements holiday.HolidayService.
func (s *HolidayServiceImpl) Create(ctx context.Context, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	created, err := s.holidayRepo.Create(ctx, holiday.Holiday{
		Date: date,
		Name: strings.TrimSpace(req.Name),
	})
	if err != nil {
		return holiday.HolidayResponse{}, err
	}
	s.holidays.Invalidate()

	slog.Info("Holiday created", "date", req.Date, "name", created.Name)
	return holiday.NewHolidayResponse(created), nil
}

// Delete implements holiday.HolidayService.
func (s *HolidayServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.holidayRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.holidays.Invalidate()
	return nil
}

// Import implements holiday.HolidayService. Every row is validated before
// anything is written; one bad row rejects the whole sheet.
func (s *HolidayServiceImpl) Import(ctx context.Context, r io.Reader) (holiday.ImportResponse, error) {
	parsed, err := ParseImportSheet(r)
	if err != nil {
		return holiday.ImportResponse{}, err
	}

	created := make([]holiday.HolidayResponse, 0, len(parsed))
	err = s.tx.InTransaction(ctx, func(txCtx context.Context) error {
		for _, h := range parsed {
			c, err := s.holidayRepo.Create(txCtx, h)
			if err != nil {
				return err
			}
			created = append(created, holiday.NewHolidayResponse(c))
		}
		return nil
	})
	if err != nil {
		return holiday.ImportResponse{}, err
	}
	s.holidays.Invalidate()

	slog.Info("Holidays imported", "count", len(created))
	return holiday.ImportResponse{Imported: len(created), Holidays: created}, nil
}

// ParseImportSheet reads the first sheet of a workbook whose header row has
// "date" and "name" columns. Blank rows are skipped.
func ParseImportSheet(r io.Reader) ([]holiday.Holiday, error) {
	table, err := spreadsheet.ReadSheet(r, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", holiday.ErrInvalidImportSheet, err)
	}

	dateCol := table.Column("date")
	nameCol := table.Column("name")
	if dateCol < 0 || nameCol < 0 {
		return nil, holiday.ErrInvalidImportSheet
	}

	var (
		holidays []holiday.Holiday
		errs     validator.ValidationErrors
		seen     = make(map[string]int)
	)
	for i := range table.Rows {
		rawDate := table.Cell(i, dateCol)
		name := table.Cell(i, nameCol)
		if rawDate == "" && name == "" {
			continue
		}

		// Row numbers as shown in the spreadsheet, header is row 1.
		field := fmt.Sprintf("row %d", i+2)
		date, ok := spreadsheet.ParseDate(rawDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: field, Message: fmt.Sprintf("invalid date %q", rawDate)})
			continue
		}
		if name == "" {
			errs = append(errs, validator.ValidationError{Field: field, Message: "name is required"})
			continue
		}
		key := date.Format("2006-01-02")
		if prev, dup := seen[key]; dup {
			errs = append(errs, validator.ValidationError{Field: field, Message: fmt.Sprintf("duplicate of row %d", prev)})
			continue
		}
		seen[key] = i + 2

		holidays = append(holidays, holiday.Holiday{Date: date, Name: name})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	if len(holidays) == 0 {
		return nil, holiday.ErrEmptyImport
	}
	return holidays, nil
}
