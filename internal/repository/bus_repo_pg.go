package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/busreservation/internal/domain"
)

type BusRepository interface {
	Create(ctx context.Context, bus *domain.Bus) error
	GetByID(ctx context.Context, id int64) (*domain.Bus, error)
	List(ctx context.Context) ([]domain.Bus, error)
	ListByStatus(ctx context.Context, status domain.BusStatus) ([]domain.Bus, error)
	Update(ctx context.Context, bus *domain.Bus) error
	Delete(ctx context.Context, id int64) error
}

type PGBusRepository struct {
	db *pgxpool.Pool
}

func NewBusRepository(db *pgxpool.Pool) BusRepository {
	return &PGBusRepository{db: db}
}

const busColumns = `id, number, name, category, total_seats, base_fare_cents, status, created_at, updated_at`

func scanBus(row pgx.Row, b *domain.Bus) error {
	return row.Scan(&b.ID, &b.Number, &b.Name, &b.Category, &b.TotalSeats, &b.BaseFareCents, &b.Status, &b.CreatedAt, &b.UpdatedAt)
}

func (r *PGBusRepository) Create(ctx context.Context, bus *domain.Bus) error {
	row := r.db.QueryRow(ctx, `INSERT INTO buses (number, name, category, total_seats, base_fare_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		bus.Number, bus.Name, bus.Category, bus.TotalSeats, bus.BaseFareCents, bus.Status)
	return row.Scan(&bus.ID, &bus.CreatedAt, &bus.UpdatedAt)
}

func (r *PGBusRepository) GetByID(ctx context.Context, id int64) (*domain.Bus, error) {
	row := r.db.QueryRow(ctx, `SELECT `+busColumns+` FROM buses WHERE id=$1`, id)
	var b domain.Bus
	if err := scanBus(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBusNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBusRepository) List(ctx context.Context) ([]domain.Bus, error) {
	rows, err := r.db.Query(ctx, `SELECT `+busColumns+` FROM buses ORDER BY number`)
	if err != nil {
		return nil, err
	}
	return collectBuses(rows)
}

func (r *PGBusRepository) ListByStatus(ctx context.Context, status domain.BusStatus) ([]domain.Bus, error) {
	rows, err := r.db.Query(ctx, `SELECT `+busColumns+` FROM buses WHERE status=$1 ORDER BY number`, status)
	if err != nil {
		return nil, err
	}
	return collectBuses(rows)
}

func collectBuses(rows pgx.Rows) ([]domain.Bus, error) {
	defer rows.Close()
	buses := make([]domain.Bus, 0)
	for rows.Next() {
		var b domain.Bus
		if err := scanBus(rows, &b); err != nil {
			return nil, err
		}
		buses = append(buses, b)
	}
	return buses, rows.Err()
}

func (r *PGBusRepository) Update(ctx context.Context, bus *domain.Bus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE buses SET number=$1, name=$2, category=$3, total_seats=$4, base_fare_cents=$5, status=$6, updated_at=now() WHERE id=$7`,
		bus.Number, bus.Name, bus.Category, bus.TotalSeats, bus.BaseFareCents, bus.Status, bus.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBusNotFound
	}
	return nil
}

func (r *PGBusRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM buses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBusNotFound
	}
	return nil
}

var _ BusRepository = (*PGBusRepository)(nil)
