package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/busreservation/api"
	"github.com/mkravets/busreservation/config"
	"github.com/mkravets/busreservation/internal/service/auth"
	"github.com/mkravets/busreservation/internal/service/fleet"
	"github.com/mkravets/busreservation/internal/service/reservation"
)

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	authSvc auth.AuthUseCase,
	fleetSvc fleet.FleetUseCase,
	reservationSvc reservation.ReservationUseCase,
) error {
	engine := newEngine(cfg, authSvc, fleetSvc, reservationSvc)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newEngine(
	cfg *config.Config,
	authSvc auth.AuthUseCase,
	fleetSvc fleet.FleetUseCase,
	reservationSvc reservation.ReservationUseCase,
) *gin.Engine {
	engine := gin.Default()

	authHandler := api.NewAuthHandler(authSvc)
	busHandler := api.NewBusHandler(fleetSvc)
	routeHandler := api.NewRouteHandler(fleetSvc)
	scheduleHandler := api.NewScheduleHandler(fleetSvc)
	bookingHandler := api.NewBookingHandler(reservationSvc)

	v1 := engine.Group("/api/v1")

	// Unauthenticated surface: registration, login and read-only fleet
	// data including the seat map.
	authHandler.Register(v1.Group("/auth"))
	busHandler.Register(v1.Group("/buses"))
	routeHandler.Register(v1.Group("/routes"))
	scheduleHandler.Register(v1.Group("/schedules"))
	bookingHandler.RegisterPublic(v1)

	authenticated := v1.Group("/", api.RequireAuth(cfg.Auth.JWTSecret))
	authHandler.RegisterAuthenticated(authenticated.Group("/auth"))
	bookingHandler.Register(authenticated.Group("/bookings"))

	admin := authenticated.Group("/admin", api.RequireAdmin())
	busHandler.RegisterAdmin(admin.Group("/buses"))
	routeHandler.RegisterAdmin(admin.Group("/routes"))
	scheduleHandler.RegisterAdmin(admin.Group("/schedules"))
	bookingHandler.RegisterAdmin(admin)

	return engine
}
