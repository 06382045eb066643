package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkravets/busreservation/config"
	"github.com/mkravets/busreservation/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	busesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, busesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		busesTTL: busesTTL,
	}
}

func (c *RedisCache) GetBuses(ctx context.Context) ([]domain.Bus, error) {
	data, err := c.client.Get(ctx, busesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var buses []domain.Bus
	if err := json.Unmarshal(data, &buses); err != nil {
		return nil, err
	}
	return buses, nil
}

func (c *RedisCache) SetBuses(ctx context.Context, buses []domain.Bus) error {
	payload, err := json.Marshal(buses)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, busesKey(), payload, c.busesTTL).Err()
}

func (c *RedisCache) InvalidateBuses(ctx context.Context) error {
	return c.client.Del(ctx, busesKey()).Err()
}

// AcquireSeatLock takes a short-lived lock on one (bus, seat, travel
// date) key. SetNX makes competing reservations for the same key
// serialize without blocking; the TTL bounds how long a crashed holder
// can keep the seat locked.
func (c *RedisCache) AcquireSeatLock(ctx context.Context, busID int64, seat int, travelDate time.Time, ttl time.Duration) (bool, error) {
	key := seatLockKey(busID, seat, travelDate)
	return c.client.SetNX(ctx, key, "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSeatLock(ctx context.Context, busID int64, seat int, travelDate time.Time) error {
	return c.client.Del(ctx, seatLockKey(busID, seat, travelDate)).Err()
}

func busesKey() string {
	return "cache:buses"
}

func seatLockKey(busID int64, seat int, travelDate time.Time) string {
	return fmt.Sprintf("lock:bus:%d:seat:%d:date:%s", busID, seat, travelDate.Format("2006-01-02"))
}
