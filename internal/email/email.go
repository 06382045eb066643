package email

import (
	"context"
	"log"

	"github.com/mkravets/busreservation/internal/kafka"
)

// Sender delivers passenger notifications for booking events. The
// current implementation only logs; swapping in SMTP keeps the worker
// untouched.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	log.Printf("notify user %d: %s for booking %s (bus %d seat %d on %s)",
		event.UserID, event.Type, event.Reference, event.BusID, event.SeatNumber, event.TravelDate)
	return nil
}
