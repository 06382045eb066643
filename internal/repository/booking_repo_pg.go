package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/busreservation/internal/domain"
)

// BookingRepository is the booking ledger: the authoritative record of
// every reservation and its current status. Cancel is the only status
// mutation exposed besides the worker's completion sweep;
// UpdatePassenger edits contact fields without touching status; Delete
// exists solely as the coordinator's compensating rollback.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListByBus(ctx context.Context, busID int64) ([]domain.Booking, error)
	UpdatePassenger(ctx context.Context, id int64, name, phone string) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64) (*domain.Booking, error)
	Delete(ctx context.Context, id int64) error
	CompleteDeparted(ctx context.Context, before time.Time) ([]domain.Booking, error)
	CountConfirmedForBus(ctx context.Context, busID int64) (int, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, reference, user_id, bus_id, schedule_id, seat_number, passenger_name, passenger_phone, fare_cents, status, booked_at, travel_date, created_at, updated_at`

func scanBooking(row pgx.Row, b *domain.Booking) error {
	return row.Scan(&b.ID, &b.Reference, &b.UserID, &b.BusID, &b.ScheduleID, &b.SeatNumber,
		&b.PassengerName, &b.PassengerPhone, &b.FareCents, &b.Status, &b.BookedAt,
		&b.TravelDate, &b.CreatedAt, &b.UpdatedAt)
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusConfirmed
	row := r.db.QueryRow(ctx, `INSERT INTO bookings (reference, user_id, bus_id, schedule_id, seat_number, passenger_name, passenger_phone, fare_cents, status, booked_at, travel_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), $10)
		RETURNING id, booked_at, created_at, updated_at`,
		booking.Reference, booking.UserID, booking.BusID, booking.ScheduleID, booking.SeatNumber,
		booking.PassengerName, booking.PassengerPhone, booking.FareCents, booking.Status, booking.TravelDate)
	return row.Scan(&booking.ID, &booking.BookedAt, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE reference=$1`, reference)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListByBus(ctx context.Context, busID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE bus_id=$1 ORDER BY created_at DESC`, busID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()
	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// Cancel flips a Confirmed booking to Cancelled. The status guard is in
// the statement itself so a racing cancel cannot apply twice;
// pgx.ErrNoRows means the booking was missing or not Confirmed and the
// caller decides which.
func (r *PGBookingRepository) Cancel(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 AND status=$3 RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, id, domain.BookingStatusConfirmed)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdatePassenger rewrites the passenger contact fields of a Confirmed
// booking. The status guard mirrors Cancel: pgx.ErrNoRows means the
// booking was missing or no longer Confirmed and the caller decides
// which.
func (r *PGBookingRepository) UpdatePassenger(ctx context.Context, id int64, name, phone string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET passenger_name=$1, passenger_phone=$2, updated_at=now() WHERE id=$3 AND status=$4 RETURNING `+bookingColumns,
		name, phone, id, domain.BookingStatusConfirmed)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *PGBookingRepository) CompleteDeparted(ctx context.Context, before time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE status=$2 AND travel_date < $3 RETURNING `+bookingColumns,
		domain.BookingStatusCompleted, domain.BookingStatusConfirmed, before)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) CountConfirmedForBus(ctx context.Context, busID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE bus_id=$1 AND status=$2`, busID, domain.BookingStatusConfirmed).Scan(&n)
	return n, err
}

var _ BookingRepository = (*PGBookingRepository)(nil)
