package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/busreservation/internal/domain"
)

// OccupiedSeat is one row of the seat_occupancy table: a seat held by a
// confirmed booking for a bus on a travel date.
type OccupiedSeat struct {
	SeatNumber int
	BookingID  int64
}

// SeatRepository stores seat occupancy keyed by (bus, seat number,
// travel date). Occupy is a conditional insert guarded by the unique
// key on that triple, so the availability check and the state flip are
// one atomic statement: of two racing reservations for the same seat,
// exactly one insert lands.
type SeatRepository interface {
	Occupy(ctx context.Context, busID int64, seatNumber int, travelDate time.Time, bookingID int64) error
	Release(ctx context.Context, busID int64, seatNumber int, travelDate time.Time) error
	IsOccupied(ctx context.Context, busID int64, seatNumber int, travelDate time.Time) (bool, error)
	CountOccupied(ctx context.Context, busID int64, travelDate time.Time) (int, error)
	ListOccupied(ctx context.Context, busID int64, travelDate time.Time) ([]OccupiedSeat, error)
}

type PGSeatRepository struct {
	db *pgxpool.Pool
}

func NewSeatRepository(db *pgxpool.Pool) SeatRepository {
	return &PGSeatRepository{db: db}
}

func (r *PGSeatRepository) Occupy(ctx context.Context, busID int64, seatNumber int, travelDate time.Time, bookingID int64) error {
	cmd, err := r.db.Exec(ctx, `INSERT INTO seat_occupancy (bus_id, seat_number, travel_date, booking_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (bus_id, seat_number, travel_date) DO NOTHING`,
		busID, seatNumber, travelDate, bookingID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrSeatUnavailable
	}
	return nil
}

func (r *PGSeatRepository) Release(ctx context.Context, busID int64, seatNumber int, travelDate time.Time) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM seat_occupancy WHERE bus_id=$1 AND seat_number=$2 AND travel_date=$3`,
		busID, seatNumber, travelDate)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrSeatNotOccupied
	}
	return nil
}

func (r *PGSeatRepository) IsOccupied(ctx context.Context, busID int64, seatNumber int, travelDate time.Time) (bool, error) {
	var occupied bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM seat_occupancy WHERE bus_id=$1 AND seat_number=$2 AND travel_date=$3)`,
		busID, seatNumber, travelDate).Scan(&occupied)
	return occupied, err
}

func (r *PGSeatRepository) CountOccupied(ctx context.Context, busID int64, travelDate time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM seat_occupancy WHERE bus_id=$1 AND travel_date=$2`, busID, travelDate).Scan(&n)
	return n, err
}

func (r *PGSeatRepository) ListOccupied(ctx context.Context, busID int64, travelDate time.Time) ([]OccupiedSeat, error) {
	rows, err := r.db.Query(ctx, `SELECT seat_number, booking_id FROM seat_occupancy WHERE bus_id=$1 AND travel_date=$2 ORDER BY seat_number`,
		busID, travelDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]OccupiedSeat, 0)
	for rows.Next() {
		var s OccupiedSeat
		if err := rows.Scan(&s.SeatNumber, &s.BookingID); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

var _ SeatRepository = (*PGSeatRepository)(nil)
