package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/busreservation/internal/domain"
	"github.com/mkravets/busreservation/internal/service/reservation"
)

type BookingHandler struct {
	service reservation.ReservationUseCase
}

type updateBookingRequest struct {
	PassengerName  string `json:"passenger_name"`
	PassengerPhone string `json:"passenger_phone"`
}

type createBookingRequest struct {
	BusID          int64  `json:"bus_id"`
	ScheduleID     int64  `json:"schedule_id"`
	SeatNumber     int    `json:"seat_number"`
	PassengerName  string `json:"passenger_name"`
	PassengerPhone string `json:"passenger_phone"`
	TravelDate     string `json:"travel_date"`
}

type bookingResponse struct {
	ID             int64  `json:"id"`
	Reference      string `json:"reference"`
	BusID          int64  `json:"bus_id"`
	ScheduleID     int64  `json:"schedule_id"`
	SeatNumber     int    `json:"seat_number"`
	PassengerName  string `json:"passenger_name"`
	PassengerPhone string `json:"passenger_phone"`
	FareCents      int64  `json:"fare_cents"`
	Status         string `json:"status"`
	TravelDate     string `json:"travel_date"`
	BookedAt       string `json:"booked_at"`
}

func NewBookingHandler(service reservation.ReservationUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.listMine)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.cancel)
}

// RegisterAdmin mounts the admin-gated booking queries.
func (h *BookingHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("/bookings", h.listAll)
	router.GET("/buses/:id/bookings", h.listByBus)
}

// RegisterPublic mounts the availability queries that need no login.
func (h *BookingHandler) RegisterPublic(router *gin.RouterGroup) {
	router.GET("/buses/:id/seats", h.seatMap)
	router.GET("/buses/:id/availability", h.availability)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	travelDate, err := time.Parse("2006-01-02", req.TravelDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "travel_date must be YYYY-MM-DD"})
		return
	}

	booking, err := h.service.Reserve(c.Request.Context(), reservation.ReserveInput{
		UserID:         currentUserID(c),
		BusID:          req.BusID,
		ScheduleID:     req.ScheduleID,
		SeatNumber:     req.SeatNumber,
		PassengerName:  req.PassengerName,
		PassengerPhone: req.PassengerPhone,
		TravelDate:     travelDate,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(booking))
}

func (h *BookingHandler) get(c *gin.Context) {
	booking, err := h.service.GetByReference(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	// A booking is only visible to its owner or an admin.
	if booking.UserID != currentUserID(c) && !isAdmin(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrBookingNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

func (h *BookingHandler) listMine(c *gin.Context) {
	bookings, err := h.service.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (h *BookingHandler) update(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	booking, err := h.service.UpdatePassenger(c.Request.Context(), bookingID, currentUserID(c), isAdmin(c), req.PassengerName, req.PassengerPhone)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

func (h *BookingHandler) listAll(c *gin.Context) {
	bookings, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (h *BookingHandler) listByBus(c *gin.Context) {
	busID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bus id"})
		return
	}
	bookings, err := h.service.ListByBus(c.Request.Context(), busID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	booking, err := h.service.Cancel(c.Request.Context(), bookingID, currentUserID(c), isAdmin(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

func (h *BookingHandler) seatMap(c *gin.Context) {
	busID, travelDate, ok := busAndDate(c)
	if !ok {
		return
	}
	seats, err := h.service.SeatMap(c.Request.Context(), busID, travelDate)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bus_id": busID, "travel_date": travelDate.Format("2006-01-02"), "seats": seats})
}

func (h *BookingHandler) availability(c *gin.Context) {
	busID, travelDate, ok := busAndDate(c)
	if !ok {
		return
	}
	if seatParam := c.Query("seat"); seatParam != "" {
		seat, err := strconv.Atoi(seatParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seat number"})
			return
		}
		available, err := h.service.IsAvailable(c.Request.Context(), busID, seat, travelDate)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bus_id": busID, "seat_number": seat, "available": available})
		return
	}

	count, err := h.service.AvailableCount(c.Request.Context(), busID, travelDate)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bus_id": busID, "available_seats": count})
}

func busAndDate(c *gin.Context) (int64, time.Time, bool) {
	busID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bus id"})
		return 0, time.Time{}, false
	}
	travelDate, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return 0, time.Time{}, false
	}
	return busID, travelDate, true
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:             b.ID,
		Reference:      b.Reference,
		BusID:          b.BusID,
		ScheduleID:     b.ScheduleID,
		SeatNumber:     b.SeatNumber,
		PassengerName:  b.PassengerName,
		PassengerPhone: b.PassengerPhone,
		FareCents:      b.FareCents,
		Status:         string(b.Status),
		TravelDate:     b.TravelDate.Format("2006-01-02"),
		BookedAt:       b.BookedAt.Format(time.RFC3339),
	}
}

func toBookingResponses(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	return out
}
