package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type timeEntryRepositoryImpl struct {
	db *database.DB
}

func NewTimeEntryRepository(db *database.DB) timeentry.TimeEntryRepository {
	return &timeEntryRepositoryImpl{db: db}
}

const timeEntryColumns = `id, employee_id, date, clock_in, clock_out, break_taken, created_at`

func scanTimeEntry(row pgx.Row) (timeentry.TimeEntry, error) {
	var e timeentry.TimeEntry
	err := row.Scan(&e.ID, &e.EmployeeID, &e.Date, &e.ClockIn, &e.ClockOut, &e.BreakTaken, &e.CreatedAt)
	return e, err
}

// List implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) List(ctx context.Context) ([]timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries ORDER BY date DESC, created_at DESC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	entries := make([]timeentry.TimeEntry, 0)
	for rows.Next() {
		e, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate time entries: %w", err)
	}

	return entries, nil
}

// GetByID implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) GetByID(ctx context.Context, id string) (timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = $1`

	e, err := scanTimeEntry(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
		}
		return timeentry.TimeEntry{}, fmt.Errorf("failed to get time entry with id %s: %w", id, err)
	}

	return e, nil
}

// Create implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) Create(ctx context.Context, entry timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO time_entries (employee_id, date, clock_in, clock_out, break_taken)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + timeEntryColumns

	created, err := scanTimeEntry(q.QueryRow(ctx, query,
		entry.EmployeeID,
		entry.Date,
		entry.ClockIn,
		entry.ClockOut,
		entry.BreakTaken,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return timeentry.TimeEntry{}, fmt.Errorf("employee %s: %w", entry.EmployeeID, errEmployeeReference)
		}
		return timeentry.TimeEntry{}, fmt.Errorf("failed to create time entry: %w", err)
	}

	return created, nil
}

// Update implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) Update(ctx context.Context, id string, patch timeentry.Patch) (timeentry.TimeEntry, error) {
	if patch.IsEmpty() {
		return timeentry.TimeEntry{}, timeentry.ErrEmptyPatch
	}

	q := GetQuerier(ctx, r.db)

	updates := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	argIdx := 1

	if patch.ClockOut != nil {
		updates = append(updates, fmt.Sprintf("clock_out = $%d", argIdx))
		args = append(args, *patch.ClockOut)
		argIdx++
	}
	if patch.BreakTaken != nil {
		updates = append(updates, fmt.Sprintf("break_taken = $%d", argIdx))
		args = append(args, *patch.BreakTaken)
		argIdx++
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE time_entries
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(updates, ", "), argIdx, timeEntryColumns)

	updated, err := scanTimeEntry(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
		}
		return timeentry.TimeEntry{}, fmt.Errorf("failed to update time entry with id %s: %w", id, err)
	}

	return updated, nil
}
