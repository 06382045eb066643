package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/mkravets/busreservation/config"
	"github.com/mkravets/busreservation/internal/bootstrap"
	"github.com/mkravets/busreservation/internal/cache"
	"github.com/mkravets/busreservation/internal/kafka"
	"github.com/mkravets/busreservation/internal/repository"
	"github.com/mkravets/busreservation/internal/service/auth"
	"github.com/mkravets/busreservation/internal/service/fleet"
	"github.com/mkravets/busreservation/internal/service/reservation"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.BusCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	seatRepo := repository.NewSeatRepository(pool)
	busRepo := repository.NewBusRepository(pool)
	routeRepo := repository.NewRouteRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	authService := auth.NewAuthService(userRepo, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	fleetService := fleet.NewFleetService(busRepo, routeRepo, scheduleRepo, bookingRepo, redisCache)
	reservationService := reservation.NewReservationService(
		bookingRepo,
		seatRepo,
		busRepo,
		routeRepo,
		scheduleRepo,
		userRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.SeatLockTTLSeconds)*time.Second,
		reservation.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, authService, fleetService, reservationService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
