package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clearway/collections-backend-go/internal/domain/run"
	"github.com/clearway/collections-backend-go/internal/pkg/database"
)

type runRepositoryImpl struct {
	db *database.DB
}

func NewRunRepository(db *database.DB) run.Repository {
	return &runRepositoryImpl{db: db}
}

const runColumns = `id, run_date, route_day, route_area, slot, vehicle, crew, stop_order, notes, created_at, updated_at`

func scanRun(row pgx.Row) (run.DailyRun, error) {
	var r run.DailyRun
	err := row.Scan(
		&r.ID,
		&r.RunDate,
		&r.RouteDay,
		&r.RouteArea,
		&r.Slot,
		&r.Vehicle,
		&r.Crew,
		&r.StopOrder,
		&r.Notes,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

// Create implements run.Repository.
func (r *runRepositoryImpl) Create(ctx context.Context, dr run.DailyRun) (run.DailyRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO daily_runs (id, run_date, route_day, route_area, slot, vehicle, crew, stop_order, notes, created_at, updated_at)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING ` + runColumns

	result, err := scanRun(q.QueryRow(ctx, query,
		dr.RunDate, dr.RouteDay, dr.RouteArea, dr.Slot, dr.Vehicle, dr.Crew, dr.StopOrder, dr.Notes,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return run.DailyRun{}, run.ErrRunExists
		}
		return run.DailyRun{}, fmt.Errorf("failed to create run: %w", err)
	}

	return result, nil
}

// GetByID implements run.Repository.
func (r *runRepositoryImpl) GetByID(ctx context.Context, id string) (run.DailyRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM daily_runs WHERE id = $1`

	result, err := scanRun(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return run.DailyRun{}, run.ErrRunNotFound
		}
		return run.DailyRun{}, fmt.Errorf("failed to get run: %w", err)
	}

	return result, nil
}

// List implements run.Repository.
func (r *runRepositoryImpl) List(ctx context.Context, from, to *time.Time) ([]run.DailyRun, error) {
	query := `SELECT ` + runColumns + ` FROM daily_runs`
	args := []interface{}{}
	argIdx := 1

	if from != nil {
		query += fmt.Sprintf(" WHERE run_date >= $%d", argIdx)
		args = append(args, *from)
		argIdx++
	}
	if to != nil {
		if from != nil {
			query += fmt.Sprintf(" AND run_date <= $%d", argIdx)
		} else {
			query += fmt.Sprintf(" WHERE run_date <= $%d", argIdx)
		}
		args = append(args, *to)
	}
	query += ` ORDER BY run_date ASC, route_area ASC`

	return r.queryMany(ctx, query, args...)
}

// ListByDate implements run.Repository.
func (r *runRepositoryImpl) ListByDate(ctx context.Context, date time.Time) ([]run.DailyRun, error) {
	query := `SELECT ` + runColumns + ` FROM daily_runs WHERE run_date = $1 ORDER BY route_area ASC`
	return r.queryMany(ctx, query, date)
}

func (r *runRepositoryImpl) queryMany(ctx context.Context, query string, args ...interface{}) ([]run.DailyRun, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []run.DailyRun
	for rows.Next() {
		dr, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, dr)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return runs, nil
}

// Update implements run.Repository.
func (r *runRepositoryImpl) Update(ctx context.Context, dr run.DailyRun) (run.DailyRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE daily_runs
		SET run_date = $2, route_day = $3, route_area = $4, slot = $5, vehicle = $6, crew = $7, stop_order = $8, notes = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + runColumns

	result, err := scanRun(q.QueryRow(ctx, query,
		dr.ID, dr.RunDate, dr.RouteDay, dr.RouteArea, dr.Slot, dr.Vehicle, dr.Crew, dr.StopOrder, dr.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return run.DailyRun{}, run.ErrRunNotFound
		}
		return run.DailyRun{}, fmt.Errorf("failed to update run: %w", err)
	}

	return result, nil
}

// UpdateStopOrder implements run.Repository.
func (r *runRepositoryImpl) UpdateStopOrder(ctx context.Context, id string, order []run.StopRef) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `UPDATE daily_runs SET stop_order = $2, updated_at = NOW() WHERE id = $1`, id, order)
	if err != nil {
		return fmt.Errorf("failed to update stop order: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return run.ErrRunNotFound
	}

	return nil
}

// Delete implements run.Repository.
func (r *runRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM daily_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return run.ErrRunNotFound
	}

	return nil
}
