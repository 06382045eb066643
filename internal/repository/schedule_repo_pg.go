package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/busreservation/internal/domain"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.Schedule) error
	GetByID(ctx context.Context, id int64) (*domain.Schedule, error)
	ListByBus(ctx context.Context, busID int64) ([]domain.Schedule, error)
	List(ctx context.Context) ([]domain.Schedule, error)
	Update(ctx context.Context, schedule *domain.Schedule) error
	Delete(ctx context.Context, id int64) error
}

type PGScheduleRepository struct {
	db *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) ScheduleRepository {
	return &PGScheduleRepository{db: db}
}

const scheduleColumns = `id, bus_id, route_id, departure_time, arrival_time, created_at, updated_at`

func scanSchedule(row pgx.Row, s *domain.Schedule) error {
	return row.Scan(&s.ID, &s.BusID, &s.RouteID, &s.DepartureTime, &s.ArrivalTime, &s.CreatedAt, &s.UpdatedAt)
}

func (r *PGScheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) error {
	row := r.db.QueryRow(ctx, `INSERT INTO schedules (bus_id, route_id, departure_time, arrival_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		schedule.BusID, schedule.RouteID, schedule.DepartureTime, schedule.ArrivalTime)
	return row.Scan(&schedule.ID, &schedule.CreatedAt, &schedule.UpdatedAt)
}

func (r *PGScheduleRepository) GetByID(ctx context.Context, id int64) (*domain.Schedule, error) {
	row := r.db.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id=$1`, id)
	var s domain.Schedule
	if err := scanSchedule(row, &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGScheduleRepository) ListByBus(ctx context.Context, busID int64) ([]domain.Schedule, error) {
	rows, err := r.db.Query(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE bus_id=$1 ORDER BY departure_time`, busID)
	if err != nil {
		return nil, err
	}
	return collectSchedules(rows)
}

func (r *PGScheduleRepository) List(ctx context.Context) ([]domain.Schedule, error) {
	rows, err := r.db.Query(ctx, `SELECT `+scheduleColumns+` FROM schedules ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	return collectSchedules(rows)
}

func collectSchedules(rows pgx.Rows) ([]domain.Schedule, error) {
	defer rows.Close()
	schedules := make([]domain.Schedule, 0)
	for rows.Next() {
		var s domain.Schedule
		if err := scanSchedule(rows, &s); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *PGScheduleRepository) Update(ctx context.Context, schedule *domain.Schedule) error {
	cmd, err := r.db.Exec(ctx, `UPDATE schedules SET bus_id=$1, route_id=$2, departure_time=$3, arrival_time=$4, updated_at=now() WHERE id=$5`,
		schedule.BusID, schedule.RouteID, schedule.DepartureTime, schedule.ArrivalTime, schedule.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

func (r *PGScheduleRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM schedules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

var _ ScheduleRepository = (*PGScheduleRepository)(nil)
