package domain

import "time"

type Route struct {
	ID             int64
	Source         string
	Destination    string
	DistanceKM     float64
	Duration       time.Duration
	FareMultiplier float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Schedule links a bus to a route for a departure/arrival pair. A
// (bus, travel date) pair is bookable only through a schedule.
type Schedule struct {
	ID            int64
	BusID         int64
	RouteID       int64
	DepartureTime time.Time
	ArrivalTime   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
