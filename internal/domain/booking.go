package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// Valid reports whether s is one of the known booking states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

type Booking struct {
	ID             int64
	Reference      string
	UserID         int64
	BusID          int64
	ScheduleID     int64
	SeatNumber     int
	PassengerName  string
	PassengerPhone string
	FareCents      int64
	Status         BookingStatus
	BookedAt       time.Time
	TravelDate     time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
