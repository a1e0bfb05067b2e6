package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/timeclock-go/internal/domain/vacation"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type vacationRepositoryImpl struct {
	db *database.DB
}

func NewVacationRepository(db *database.DB) vacation.VacationRepository {
	return &vacationRepositoryImpl{db: db}
}

const vacationColumns = `id, employee_id, date, type, created_at`

func scanVacationDay(row pgx.Row) (vacation.VacationDay, error) {
	var v vacation.VacationDay
	err := row.Scan(&v.ID, &v.EmployeeID, &v.Date, &v.Type, &v.CreatedAt)
	return v, err
}

// List implements vacation.VacationRepository.
func (r *vacationRepositoryImpl) List(ctx context.Context) ([]vacation.VacationDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + vacationColumns + ` FROM vacation_days ORDER BY date DESC, created_at DESC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list vacation days: %w", err)
	}
	defer rows.Close()

	days := make([]vacation.VacationDay, 0)
	for rows.Next() {
		v, err := scanVacationDay(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vacation day: %w", err)
		}
		days = append(days, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vacation days: %w", err)
	}

	return days, nil
}

// Create implements vacation.VacationRepository.
func (r *vacationRepositoryImpl) Create(ctx context.Context, day vacation.VacationDay) (vacation.VacationDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO vacation_days (employee_id, date, type)
		VALUES ($1, $2, $3)
		RETURNING ` + vacationColumns

	created, err := scanVacationDay(q.QueryRow(ctx, query, day.EmployeeID, day.Date, day.Type))
	if err != nil {
		if isForeignKeyViolation(err) {
			return vacation.VacationDay{}, fmt.Errorf("employee %s: %w", day.EmployeeID, errEmployeeReference)
		}
		return vacation.VacationDay{}, fmt.Errorf("failed to create vacation day: %w", err)
	}

	return created, nil
}

// Delete implements vacation.VacationRepository.
func (r *vacationRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM vacation_days WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vacation day with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return vacation.ErrVacationDayNotFound
	}

	return nil
}
