package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkravets/busreservation/internal/domain"
	"github.com/mkravets/busreservation/internal/kafka"
	"github.com/mkravets/busreservation/internal/repository"
)

// ReservationUseCase is the coordinator: the only component allowed to
// change the booking ledger and seat inventory together, so that the
// two never diverge.
type ReservationUseCase interface {
	Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error)
	UpdatePassenger(ctx context.Context, bookingID, requestingUserID int64, adminOverride bool, name, phone string) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID, requestingUserID int64, adminOverride bool) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListByBus(ctx context.Context, busID int64) ([]domain.Booking, error)
	IsAvailable(ctx context.Context, busID int64, seatNumber int, travelDate time.Time) (bool, error)
	AvailableCount(ctx context.Context, busID int64, travelDate time.Time) (int, error)
	SeatMap(ctx context.Context, busID int64, travelDate time.Time) ([]domain.Seat, error)
	CompleteDeparted(ctx context.Context) ([]domain.Booking, error)
}

type Cache interface {
	AcquireSeatLock(ctx context.Context, busID int64, seatNumber int, travelDate time.Time, ttl time.Duration) (bool, error)
	ReleaseSeatLock(ctx context.Context, busID int64, seatNumber int, travelDate time.Time) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

// sweepPublishRetries bounds the retried publish of completion events.
// Interactive paths publish once and log; the sweep has no user waiting
// and can afford to retry.
const sweepPublishRetries = 3

type ReservationService struct {
	bookings           repository.BookingRepository
	seats              repository.SeatRepository
	buses              repository.BusRepository
	routes             repository.RouteRepository
	schedules          repository.ScheduleRepository
	users              repository.UserRepository
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	seatLockTTL        time.Duration
}

type ReserveInput struct {
	UserID         int64     `json:"user_id"`
	BusID          int64     `json:"bus_id"`
	ScheduleID     int64     `json:"schedule_id"`
	SeatNumber     int       `json:"seat_number"`
	PassengerName  string    `json:"passenger_name"`
	PassengerPhone string    `json:"passenger_phone"`
	TravelDate     time.Time `json:"travel_date"`
}

type ReservationServiceOption func(*ReservationService)

func WithNotificationsTopic(topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.notificationsTopic = topic
	}
}

func NewReservationService(
	bookings repository.BookingRepository,
	seats repository.SeatRepository,
	buses repository.BusRepository,
	routes repository.RouteRepository,
	schedules repository.ScheduleRepository,
	users repository.UserRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	seatLockTTL time.Duration,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		bookings:     bookings,
		seats:        seats,
		buses:        buses,
		routes:       routes,
		schedules:    schedules,
		users:        users,
		cache:        cache,
		producer:     producer,
		bookingTopic: bookingTopic,
		seatLockTTL:  seatLockTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Reserve books one seat for one travel date. The availability check
// and the occupy step cannot race for the same key: inventory occupy is
// a conditional insert, and the redis lock (when configured) keeps
// competitors from even reaching it. When occupy still loses, the
// just-written ledger row is deleted so ledger and inventory stay in
// agreement.
func (s *ReservationService) Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error) {
	if strings.TrimSpace(input.PassengerName) == "" {
		return nil, fmt.Errorf("%w: passenger name is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(input.PassengerPhone) == "" {
		return nil, fmt.Errorf("%w: passenger phone is required", domain.ErrInvalidInput)
	}
	if input.SeatNumber < 1 {
		return nil, fmt.Errorf("%w: seat number must be positive", domain.ErrInvalidInput)
	}
	if input.TravelDate.IsZero() {
		return nil, fmt.Errorf("%w: travel date is required", domain.ErrInvalidInput)
	}

	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		return nil, err
	}
	bus, err := s.buses.GetByID(ctx, input.BusID)
	if err != nil {
		return nil, err
	}
	if input.SeatNumber > bus.TotalSeats {
		return nil, domain.ErrSeatOutOfRange
	}
	schedule, err := s.schedules.GetByID(ctx, input.ScheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.BusID != bus.ID {
		return nil, fmt.Errorf("%w: schedule %d does not serve bus %d", domain.ErrInvalidInput, schedule.ID, bus.ID)
	}
	route, err := s.routes.GetByID(ctx, schedule.RouteID)
	if err != nil {
		return nil, err
	}

	travelDate := normalizeDate(input.TravelDate)
	fare := domain.Fare(bus.BaseFareCents, bus.Category, route.FareMultiplier)

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireSeatLock(ctx, bus.ID, input.SeatNumber, travelDate, s.seatLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrSeatUnavailable
		}
		locked = true
		defer func() {
			if locked {
				_ = s.cache.ReleaseSeatLock(ctx, bus.ID, input.SeatNumber, travelDate)
			}
		}()
	}

	occupied, err := s.seats.IsOccupied(ctx, bus.ID, input.SeatNumber, travelDate)
	if err != nil {
		return nil, err
	}
	if occupied {
		return nil, domain.ErrSeatUnavailable
	}

	booking := &domain.Booking{
		Reference:      uuid.NewString(),
		UserID:         input.UserID,
		BusID:          bus.ID,
		ScheduleID:     schedule.ID,
		SeatNumber:     input.SeatNumber,
		PassengerName:  strings.TrimSpace(input.PassengerName),
		PassengerPhone: strings.TrimSpace(input.PassengerPhone),
		FareCents:      fare,
		TravelDate:     travelDate,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.seats.Occupy(ctx, bus.ID, input.SeatNumber, travelDate, booking.ID); err != nil {
		// Compensating rollback: the ledger row must not outlive a
		// failed inventory transition.
		if delErr := s.bookings.Delete(ctx, booking.ID); delErr != nil {
			log.Printf("rollback of booking %d failed: %v", booking.ID, delErr)
		}
		if errors.Is(err, domain.ErrSeatUnavailable) {
			return nil, domain.ErrSeatUnavailable
		}
		return nil, err
	}

	if err := s.publish(ctx, "booking_created", booking); err != nil {
		log.Printf("failed to publish booking_created for %s: %v", booking.Reference, err)
	}
	return booking, nil
}

// Cancel marks a booking Cancelled and frees its seat, ledger first:
// if the process dies between the two steps the ledger stays
// authoritative and the stale occupancy row is re-derivable from the
// confirmed set.
func (s *ReservationService) Cancel(ctx context.Context, bookingID, requestingUserID int64, adminOverride bool) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !adminOverride && booking.UserID != requestingUserID {
		return nil, domain.ErrNotOwner
	}
	switch booking.Status {
	case domain.BookingStatusCancelled:
		return nil, domain.ErrAlreadyCancelled
	case domain.BookingStatusCompleted:
		return nil, domain.ErrAlreadyCompleted
	}

	updated, err := s.bookings.Cancel(ctx, bookingID)
	if err != nil {
		// Lost a race with another cancel or the completion sweep;
		// re-read to report the actual state.
		current, readErr := s.bookings.GetByID(ctx, bookingID)
		if readErr != nil {
			return nil, readErr
		}
		switch current.Status {
		case domain.BookingStatusCancelled:
			return nil, domain.ErrAlreadyCancelled
		case domain.BookingStatusCompleted:
			return nil, domain.ErrAlreadyCompleted
		}
		return nil, err
	}

	if err := s.seats.Release(ctx, updated.BusID, updated.SeatNumber, updated.TravelDate); err != nil {
		if !errors.Is(err, domain.ErrSeatNotOccupied) {
			log.Printf("release of bus %d seat %d on %s failed: %v",
				updated.BusID, updated.SeatNumber, updated.TravelDate.Format("2006-01-02"), err)
		}
	}

	if err := s.publish(ctx, "booking_cancelled", updated); err != nil {
		log.Printf("failed to publish booking_cancelled for %s: %v", updated.Reference, err)
	}
	return updated, nil
}

// UpdatePassenger edits the passenger contact details of a Confirmed
// booking. Only the owner (or an admin) may edit, and Cancelled and
// Completed bookings are immutable.
func (s *ReservationService) UpdatePassenger(ctx context.Context, bookingID, requestingUserID int64, adminOverride bool, name, phone string) (*domain.Booking, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return nil, fmt.Errorf("%w: passenger name is required", domain.ErrInvalidInput)
	}
	if phone == "" {
		return nil, fmt.Errorf("%w: passenger phone is required", domain.ErrInvalidInput)
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !adminOverride && booking.UserID != requestingUserID {
		return nil, domain.ErrNotOwner
	}
	switch booking.Status {
	case domain.BookingStatusCancelled:
		return nil, domain.ErrAlreadyCancelled
	case domain.BookingStatusCompleted:
		return nil, domain.ErrAlreadyCompleted
	}

	updated, err := s.bookings.UpdatePassenger(ctx, bookingID, name, phone)
	if err != nil {
		// Lost a race with a cancel or the completion sweep; re-read to
		// report the actual state.
		current, readErr := s.bookings.GetByID(ctx, bookingID)
		if readErr != nil {
			return nil, readErr
		}
		switch current.Status {
		case domain.BookingStatusCancelled:
			return nil, domain.ErrAlreadyCancelled
		case domain.BookingStatusCompleted:
			return nil, domain.ErrAlreadyCompleted
		}
		return nil, err
	}
	return updated, nil
}

func (s *ReservationService) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	return s.bookings.GetByReference(ctx, reference)
}

func (s *ReservationService) ListAll(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.List(ctx)
}

func (s *ReservationService) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *ReservationService) ListByBus(ctx context.Context, busID int64) ([]domain.Booking, error) {
	return s.bookings.ListByBus(ctx, busID)
}

func (s *ReservationService) IsAvailable(ctx context.Context, busID int64, seatNumber int, travelDate time.Time) (bool, error) {
	bus, err := s.buses.GetByID(ctx, busID)
	if err != nil {
		return false, err
	}
	if seatNumber < 1 || seatNumber > bus.TotalSeats {
		return false, domain.ErrSeatOutOfRange
	}
	occupied, err := s.seats.IsOccupied(ctx, busID, seatNumber, normalizeDate(travelDate))
	if err != nil {
		return false, err
	}
	return !occupied, nil
}

// AvailableCount is derived from the occupancy set on every call,
// never stored, so it cannot drift from the ledger.
func (s *ReservationService) AvailableCount(ctx context.Context, busID int64, travelDate time.Time) (int, error) {
	bus, err := s.buses.GetByID(ctx, busID)
	if err != nil {
		return 0, err
	}
	occupied, err := s.seats.CountOccupied(ctx, busID, normalizeDate(travelDate))
	if err != nil {
		return 0, err
	}
	return bus.TotalSeats - occupied, nil
}

func (s *ReservationService) SeatMap(ctx context.Context, busID int64, travelDate time.Time) ([]domain.Seat, error) {
	bus, err := s.buses.GetByID(ctx, busID)
	if err != nil {
		return nil, err
	}
	occupied, err := s.seats.ListOccupied(ctx, busID, normalizeDate(travelDate))
	if err != nil {
		return nil, err
	}

	byNumber := make(map[int]int64, len(occupied))
	for _, o := range occupied {
		byNumber[o.SeatNumber] = o.BookingID
	}

	seats := make([]domain.Seat, 0, bus.TotalSeats)
	for n := 1; n <= bus.TotalSeats; n++ {
		seat := domain.Seat{SeatNumber: n, State: domain.SeatStateAvailable}
		if id, ok := byNumber[n]; ok {
			seat.State = domain.SeatStateOccupied
			seat.BookingID = id
		}
		seats = append(seats, seat)
	}
	return seats, nil
}

// CompleteDeparted flips Confirmed bookings whose travel date has
// passed to Completed. Called from the worker on a ticker.
func (s *ReservationService) CompleteDeparted(ctx context.Context) ([]domain.Booking, error) {
	completed, err := s.bookings.CompleteDeparted(ctx, normalizeDate(time.Now()))
	if err != nil {
		return nil, err
	}
	for _, b := range completed {
		if err := s.publishDurable(ctx, "booking_completed", &b); err != nil {
			log.Printf("failed to publish booking_completed for %s: %v", b.Reference, err)
		}
	}
	return completed, nil
}

func (s *ReservationService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := newBookingEvent(eventType, booking)
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Reference, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.Reference, event)
	}
	return nil
}

// publishDurable is the sweep's variant of publish: same topics, but
// each send is retried with backoff.
func (s *ReservationService) publishDurable(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := newBookingEvent(eventType, booking)
	if err := s.producer.PublishWithRetry(ctx, s.bookingTopic, booking.Reference, event, sweepPublishRetries); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.PublishWithRetry(ctx, s.notificationsTopic, booking.Reference, event, sweepPublishRetries)
	}
	return nil
}

func newBookingEvent(eventType string, booking *domain.Booking) kafka.BookingEvent {
	return kafka.BookingEvent{
		Type:       eventType,
		Reference:  booking.Reference,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		BusID:      booking.BusID,
		SeatNumber: booking.SeatNumber,
		TravelDate: booking.TravelDate.Format("2006-01-02"),
		FareCents:  booking.FareCents,
		Status:     string(booking.Status),
		OccurredAt: time.Now().UTC(),
	}
}

// normalizeDate strips the time-of-day so every (bus, seat, date) key
// agrees on the day boundary regardless of caller timezone.
func normalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

var _ ReservationUseCase = (*ReservationService)(nil)
