package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/busreservation/internal/domain"
)

type RouteRepository interface {
	Create(ctx context.Context, route *domain.Route) error
	GetByID(ctx context.Context, id int64) (*domain.Route, error)
	List(ctx context.Context) ([]domain.Route, error)
	Update(ctx context.Context, route *domain.Route) error
	Delete(ctx context.Context, id int64) error
}

type PGRouteRepository struct {
	db *pgxpool.Pool
}

func NewRouteRepository(db *pgxpool.Pool) RouteRepository {
	return &PGRouteRepository{db: db}
}

const routeColumns = `id, source, destination, distance_km, duration_minutes, fare_multiplier, created_at, updated_at`

func scanRoute(row pgx.Row, rt *domain.Route) error {
	var durationMin int64
	if err := row.Scan(&rt.ID, &rt.Source, &rt.Destination, &rt.DistanceKM, &durationMin, &rt.FareMultiplier, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
		return err
	}
	rt.Duration = time.Duration(durationMin) * time.Minute
	return nil
}

func (r *PGRouteRepository) Create(ctx context.Context, route *domain.Route) error {
	row := r.db.QueryRow(ctx, `INSERT INTO routes (source, destination, distance_km, duration_minutes, fare_multiplier)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		route.Source, route.Destination, route.DistanceKM, int64(route.Duration/time.Minute), route.FareMultiplier)
	return row.Scan(&route.ID, &route.CreatedAt, &route.UpdatedAt)
}

func (r *PGRouteRepository) GetByID(ctx context.Context, id int64) (*domain.Route, error) {
	row := r.db.QueryRow(ctx, `SELECT `+routeColumns+` FROM routes WHERE id=$1`, id)
	var rt domain.Route
	if err := scanRoute(row, &rt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRouteNotFound
		}
		return nil, err
	}
	return &rt, nil
}

func (r *PGRouteRepository) List(ctx context.Context) ([]domain.Route, error) {
	rows, err := r.db.Query(ctx, `SELECT `+routeColumns+` FROM routes ORDER BY source, destination`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	routes := make([]domain.Route, 0)
	for rows.Next() {
		var rt domain.Route
		if err := scanRoute(rows, &rt); err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}

func (r *PGRouteRepository) Update(ctx context.Context, route *domain.Route) error {
	cmd, err := r.db.Exec(ctx, `UPDATE routes SET source=$1, destination=$2, distance_km=$3, duration_minutes=$4, fare_multiplier=$5, updated_at=now() WHERE id=$6`,
		route.Source, route.Destination, route.DistanceKM, int64(route.Duration/time.Minute), route.FareMultiplier, route.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRouteNotFound
	}
	return nil
}

func (r *PGRouteRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM routes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRouteNotFound
	}
	return nil
}

var _ RouteRepository = (*PGRouteRepository)(nil)
