package domain

import "errors"

// Sentinel errors returned by the core operations. Callers dispatch on
// them with errors.Is; repositories wrap the underlying driver error.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrBusNotFound      = errors.New("bus not found")
	ErrRouteNotFound    = errors.New("route not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("username or email already taken")
	ErrSeatUnavailable  = errors.New("seat is not available")
	ErrSeatOutOfRange   = errors.New("seat number out of range")
	ErrSeatNotOccupied  = errors.New("seat is not occupied")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrAlreadyCompleted = errors.New("booking is already completed")
	ErrNotOwner         = errors.New("booking belongs to another user")
	ErrBusInService     = errors.New("bus has confirmed bookings")
	ErrBadCredentials   = errors.New("invalid username or password")
)
