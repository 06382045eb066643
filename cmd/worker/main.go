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
	"github.com/mkravets/busreservation/internal/cache"
	"github.com/mkravets/busreservation/internal/email"
	"github.com/mkravets/busreservation/internal/kafka"
	"github.com/mkravets/busreservation/internal/repository"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.BusCacheTTLSeconds)*time.Second)

	bookingRepo := repository.NewBookingRepository(pool)
	seatRepo := repository.NewSeatRepository(pool)
	busRepo := repository.NewBusRepository(pool)
	routeRepo := repository.NewRouteRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)
	userRepo := repository.NewUserRepository(pool)

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

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, emailSender.Send); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.CompletionSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			completed, err := reservationService.CompleteDeparted(ctx)
			if err != nil {
				log.Printf("complete departed bookings error: %v", err)
				continue
			}
			if len(completed) > 0 {
				log.Printf("completed %d departed bookings", len(completed))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
