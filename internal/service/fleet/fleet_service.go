package fleet

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkravets/busreservation/internal/domain"
	"github.com/mkravets/busreservation/internal/repository"
)

// FleetUseCase covers the reference-data registries: buses, routes and
// schedules. Plain CRUD with a few integrity guards; none of the
// seat-state machinery lives here.
type FleetUseCase interface {
	CreateBus(ctx context.Context, bus *domain.Bus) error
	GetBus(ctx context.Context, id int64) (*domain.Bus, error)
	ListBuses(ctx context.Context, activeOnly bool) ([]domain.Bus, error)
	UpdateBus(ctx context.Context, bus *domain.Bus) error
	DeleteBus(ctx context.Context, id int64) error

	CreateRoute(ctx context.Context, route *domain.Route) error
	GetRoute(ctx context.Context, id int64) (*domain.Route, error)
	ListRoutes(ctx context.Context) ([]domain.Route, error)
	UpdateRoute(ctx context.Context, route *domain.Route) error
	DeleteRoute(ctx context.Context, id int64) error

	CreateSchedule(ctx context.Context, schedule *domain.Schedule) error
	GetSchedule(ctx context.Context, id int64) (*domain.Schedule, error)
	ListSchedules(ctx context.Context, busID int64) ([]domain.Schedule, error)
	UpdateSchedule(ctx context.Context, schedule *domain.Schedule) error
	DeleteSchedule(ctx context.Context, id int64) error
}

type Cache interface {
	GetBuses(ctx context.Context) ([]domain.Bus, error)
	SetBuses(ctx context.Context, buses []domain.Bus) error
	InvalidateBuses(ctx context.Context) error
}

type FleetService struct {
	buses     repository.BusRepository
	routes    repository.RouteRepository
	schedules repository.ScheduleRepository
	bookings  repository.BookingRepository
	cache     Cache
}

func NewFleetService(
	buses repository.BusRepository,
	routes repository.RouteRepository,
	schedules repository.ScheduleRepository,
	bookings repository.BookingRepository,
	cache Cache,
) *FleetService {
	return &FleetService{
		buses:     buses,
		routes:    routes,
		schedules: schedules,
		bookings:  bookings,
		cache:     cache,
	}
}

func (s *FleetService) CreateBus(ctx context.Context, bus *domain.Bus) error {
	if err := validateBus(bus); err != nil {
		return err
	}
	if bus.Status == "" {
		bus.Status = domain.BusStatusActive
	}
	if err := s.buses.Create(ctx, bus); err != nil {
		return err
	}
	s.invalidateBuses(ctx)
	return nil
}

func (s *FleetService) GetBus(ctx context.Context, id int64) (*domain.Bus, error) {
	return s.buses.GetByID(ctx, id)
}

func (s *FleetService) ListBuses(ctx context.Context, activeOnly bool) ([]domain.Bus, error) {
	if activeOnly {
		return s.buses.ListByStatus(ctx, domain.BusStatusActive)
	}
	if s.cache != nil {
		if cached, err := s.cache.GetBuses(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}
	buses, err := s.buses.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetBuses(ctx, buses)
	}
	return buses, nil
}

// UpdateBus refuses to shrink the seat count: date-scoped occupancy
// beyond the new capacity would be stranded.
func (s *FleetService) UpdateBus(ctx context.Context, bus *domain.Bus) error {
	if err := validateBus(bus); err != nil {
		return err
	}
	current, err := s.buses.GetByID(ctx, bus.ID)
	if err != nil {
		return err
	}
	if bus.TotalSeats < current.TotalSeats {
		return fmt.Errorf("%w: total seats cannot shrink below %d", domain.ErrInvalidInput, current.TotalSeats)
	}
	if err := s.buses.Update(ctx, bus); err != nil {
		return err
	}
	s.invalidateBuses(ctx)
	return nil
}

// DeleteBus is only permitted while no confirmed booking references
// the bus.
func (s *FleetService) DeleteBus(ctx context.Context, id int64) error {
	confirmed, err := s.bookings.CountConfirmedForBus(ctx, id)
	if err != nil {
		return err
	}
	if confirmed > 0 {
		return domain.ErrBusInService
	}
	if err := s.buses.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateBuses(ctx)
	return nil
}

func (s *FleetService) CreateRoute(ctx context.Context, route *domain.Route) error {
	if err := validateRoute(route); err != nil {
		return err
	}
	return s.routes.Create(ctx, route)
}

func (s *FleetService) GetRoute(ctx context.Context, id int64) (*domain.Route, error) {
	return s.routes.GetByID(ctx, id)
}

func (s *FleetService) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	return s.routes.List(ctx)
}

func (s *FleetService) UpdateRoute(ctx context.Context, route *domain.Route) error {
	if err := validateRoute(route); err != nil {
		return err
	}
	return s.routes.Update(ctx, route)
}

func (s *FleetService) DeleteRoute(ctx context.Context, id int64) error {
	return s.routes.Delete(ctx, id)
}

func (s *FleetService) CreateSchedule(ctx context.Context, schedule *domain.Schedule) error {
	if err := s.validateSchedule(ctx, schedule); err != nil {
		return err
	}
	return s.schedules.Create(ctx, schedule)
}

func (s *FleetService) GetSchedule(ctx context.Context, id int64) (*domain.Schedule, error) {
	return s.schedules.GetByID(ctx, id)
}

func (s *FleetService) ListSchedules(ctx context.Context, busID int64) ([]domain.Schedule, error) {
	if busID > 0 {
		return s.schedules.ListByBus(ctx, busID)
	}
	return s.schedules.List(ctx)
}

func (s *FleetService) UpdateSchedule(ctx context.Context, schedule *domain.Schedule) error {
	if err := s.validateSchedule(ctx, schedule); err != nil {
		return err
	}
	return s.schedules.Update(ctx, schedule)
}

func (s *FleetService) DeleteSchedule(ctx context.Context, id int64) error {
	return s.schedules.Delete(ctx, id)
}

func (s *FleetService) invalidateBuses(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateBuses(ctx)
	}
}

func validateBus(bus *domain.Bus) error {
	if strings.TrimSpace(bus.Number) == "" {
		return fmt.Errorf("%w: bus number is required", domain.ErrInvalidInput)
	}
	if !bus.Category.Valid() {
		return fmt.Errorf("%w: unknown bus category %q", domain.ErrInvalidInput, bus.Category)
	}
	if bus.TotalSeats < 1 {
		return fmt.Errorf("%w: total seats must be positive", domain.ErrInvalidInput)
	}
	if bus.BaseFareCents < 0 {
		return fmt.Errorf("%w: base fare cannot be negative", domain.ErrInvalidInput)
	}
	if bus.Status != "" && !bus.Status.Valid() {
		return fmt.Errorf("%w: unknown bus status %q", domain.ErrInvalidInput, bus.Status)
	}
	return nil
}

func validateRoute(route *domain.Route) error {
	if strings.TrimSpace(route.Source) == "" || strings.TrimSpace(route.Destination) == "" {
		return fmt.Errorf("%w: route source and destination are required", domain.ErrInvalidInput)
	}
	if route.FareMultiplier <= 0 {
		return fmt.Errorf("%w: fare multiplier must be positive", domain.ErrInvalidInput)
	}
	return nil
}

func (s *FleetService) validateSchedule(ctx context.Context, schedule *domain.Schedule) error {
	if _, err := s.buses.GetByID(ctx, schedule.BusID); err != nil {
		return err
	}
	if _, err := s.routes.GetByID(ctx, schedule.RouteID); err != nil {
		return err
	}
	if !schedule.ArrivalTime.After(schedule.DepartureTime) {
		return fmt.Errorf("%w: arrival must be after departure", domain.ErrInvalidInput)
	}
	return nil
}

var _ FleetUseCase = (*FleetService)(nil)
