package domain

import "time"

type BusCategory string

const (
	BusCategoryOrdinary BusCategory = "ORDINARY"
	BusCategoryDeluxe   BusCategory = "DELUXE"
	BusCategoryAC       BusCategory = "AC"
	BusCategorySleeper  BusCategory = "SLEEPER"
	BusCategoryLuxury   BusCategory = "LUXURY"
)

func (c BusCategory) Valid() bool {
	switch c {
	case BusCategoryOrdinary, BusCategoryDeluxe, BusCategoryAC, BusCategorySleeper, BusCategoryLuxury:
		return true
	}
	return false
}

type BusStatus string

const (
	BusStatusActive      BusStatus = "ACTIVE"
	BusStatusInactive    BusStatus = "INACTIVE"
	BusStatusMaintenance BusStatus = "MAINTENANCE"
)

func (s BusStatus) Valid() bool {
	switch s {
	case BusStatusActive, BusStatusInactive, BusStatusMaintenance:
		return true
	}
	return false
}

type Bus struct {
	ID            int64
	Number        string
	Name          string
	Category      BusCategory
	TotalSeats    int
	BaseFareCents int64
	Status        BusStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type SeatState string

const (
	SeatStateAvailable SeatState = "AVAILABLE"
	SeatStateOccupied  SeatState = "OCCUPIED"
	SeatStateBlocked   SeatState = "BLOCKED"
)

// Seat is one entry of the per-date seat map for a bus. BookingID is
// zero unless the seat is occupied.
type Seat struct {
	SeatNumber int       `json:"seat_number"`
	State      SeatState `json:"state"`
	BookingID  int64     `json:"booking_id,omitempty"`
}
