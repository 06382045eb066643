package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/busreservation/internal/domain"
	"github.com/mkravets/busreservation/internal/service/reservation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockReservationUseCase is a mock implementation of reservation.ReservationUseCase
type MockReservationUseCase struct {
	mock.Mock
}

func (m *MockReservationUseCase) Reserve(ctx context.Context, input reservation.ReserveInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockReservationUseCase) UpdatePassenger(ctx context.Context, bookingID, requestingUserID int64, adminOverride bool, name, phone string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, requestingUserID, adminOverride, name, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockReservationUseCase) Cancel(ctx context.Context, bookingID, requestingUserID int64, adminOverride bool) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, requestingUserID, adminOverride)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockReservationUseCase) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockReservationUseCase) ListAll(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockReservationUseCase) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockReservationUseCase) ListByBus(ctx context.Context, busID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, busID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockReservationUseCase) IsAvailable(ctx context.Context, busID int64, seatNumber int, travelDate time.Time) (bool, error) {
	args := m.Called(ctx, busID, seatNumber, travelDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationUseCase) AvailableCount(ctx context.Context, busID int64, travelDate time.Time) (int, error) {
	args := m.Called(ctx, busID, travelDate)
	return args.Int(0), args.Error(1)
}

func (m *MockReservationUseCase) SeatMap(ctx context.Context, busID int64, travelDate time.Time) ([]domain.Seat, error) {
	args := m.Called(ctx, busID, travelDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockReservationUseCase) CompleteDeparted(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func asUser(c *gin.Context, userID int64, role domain.UserRole) {
	c.Set(ctxUserID, userID)
	c.Set(ctxRole, role)
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t)
	asUser(c, 1, domain.UserRoleCustomer)

	body, _ := json.Marshal(createBookingRequest{
		BusID:          2,
		ScheduleID:     3,
		SeatNumber:     10,
		PassengerName:  "Asha Rao",
		PassengerPhone: "9876543210",
		TravelDate:     "2026-09-10",
	})
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	booking := &domain.Booking{
		ID:         77,
		Reference:  "ref-77",
		UserID:     1,
		BusID:      2,
		ScheduleID: 3,
		SeatNumber: 10,
		FareCents:  1500,
		Status:     domain.BookingStatusConfirmed,
		TravelDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
	}

	mockService.On("Reserve", c.Request.Context(), mock.MatchedBy(func(in reservation.ReserveInput) bool {
		return in.UserID == 1 && in.BusID == 2 && in.SeatNumber == 10
	})).Return(booking, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "ref-77", response.Reference)
	assert.Equal(t, string(domain.BookingStatusConfirmed), response.Status)
	assert.Equal(t, "2026-09-10", response.TravelDate)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_badDate(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t)
	asUser(c, 1, domain.UserRoleCustomer)

	body, _ := json.Marshal(createBookingRequest{
		BusID:      2,
		SeatNumber: 10,
		TravelDate: "10/09/2026",
	})
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Reserve")
}

func TestBookingHandler_create_seatTaken(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t)
	asUser(c, 1, domain.UserRoleCustomer)

	body, _ := json.Marshal(createBookingRequest{
		BusID:          2,
		ScheduleID:     3,
		SeatNumber:     10,
		PassengerName:  "Asha Rao",
		PassengerPhone: "9876543210",
		TravelDate:     "2026-09-10",
	})
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("Reserve", c.Request.Context(), mock.Anything).Return(nil, domain.ErrSeatUnavailable)

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandler_get_hidesForeignBooking(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t)
	asUser(c, 42, domain.UserRoleCustomer)
	c.Params = gin.Params{{Key: "id", Value: "ref-77"}}
	c.Request = httptest.NewRequest("GET", "/bookings/ref-77", nil)

	booking := &domain.Booking{ID: 77, Reference: "ref-77", UserID: 1}
	mockService.On("GetByReference", c.Request.Context(), "ref-77").Return(booking, nil)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_get_adminSeesAll(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t)
	asUser(c, 42, domain.UserRoleAdmin)
	c.Params = gin.Params{{Key: "id", Value: "ref-77"}}
	c.Request = httptest.NewRequest("GET", "/bookings/ref-77", nil)

	booking := &domain.Booking{ID: 77, Reference: "ref-77", UserID: 1, Status: domain.BookingStatusConfirmed}
	mockService.On("GetByReference", c.Request.Context(), "ref-77").Return(booking, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t)
	asUser(c, 1, domain.UserRoleCustomer)
	c.Params = gin.Params{{Key: "id", Value: "77"}}
	c.Request = httptest.NewRequest("DELETE", "/bookings/77", nil)

	cancelled := &domain.Booking{ID: 77, Reference: "ref-77", UserID: 1, Status: domain.BookingStatusCancelled}
	mockService.On("Cancel", c.Request.Context(), int64(77), int64(1), false).Return(cancelled, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, string(domain.BookingStatusCancelled), response.Status)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_notOwner(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t)
	asUser(c, 42, domain.UserRoleCustomer)
	c.Params = gin.Params{{Key: "id", Value: "77"}}
	c.Request = httptest.NewRequest("DELETE", "/bookings/77", nil)

	mockService.On("Cancel", c.Request.Context(), int64(77), int64(42), false).Return(nil, domain.ErrNotOwner)

	handler.cancel(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookingHandler_update(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t)
	asUser(c, 1, domain.UserRoleCustomer)
	c.Params = gin.Params{{Key: "id", Value: "77"}}

	body, _ := json.Marshal(updateBookingRequest{
		PassengerName:  "Asha Rao",
		PassengerPhone: "9876500000",
	})
	c.Request = httptest.NewRequest("PUT", "/bookings/77", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	updated := &domain.Booking{
		ID:             77,
		Reference:      "ref-77",
		UserID:         1,
		PassengerName:  "Asha Rao",
		PassengerPhone: "9876500000",
		Status:         domain.BookingStatusConfirmed,
	}
	mockService.On("UpdatePassenger", c.Request.Context(), int64(77), int64(1), false, "Asha Rao", "9876500000").Return(updated, nil)

	handler.update(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Asha Rao", response.PassengerName)
	assert.Equal(t, "9876500000", response.PassengerPhone)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_update_cancelledBooking(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t)
	asUser(c, 1, domain.UserRoleCustomer)
	c.Params = gin.Params{{Key: "id", Value: "77"}}

	body, _ := json.Marshal(updateBookingRequest{PassengerName: "Asha Rao", PassengerPhone: "9876500000"})
	c.Request = httptest.NewRequest("PUT", "/bookings/77", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("UpdatePassenger", c.Request.Context(), int64(77), int64(1), false, "Asha Rao", "9876500000").Return(nil, domain.ErrAlreadyCancelled)

	handler.update(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandler_listAll(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t)
	asUser(c, 9, domain.UserRoleAdmin)
	c.Request = httptest.NewRequest("GET", "/admin/bookings", nil)

	all := []domain.Booking{
		{ID: 1, Reference: "ref-1", Status: domain.BookingStatusConfirmed},
		{ID: 2, Reference: "ref-2", Status: domain.BookingStatusCancelled},
	}
	mockService.On("ListAll", c.Request.Context()).Return(all, nil)

	handler.listAll(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 2)
	assert.Equal(t, "ref-1", response[0].Reference)
}

func TestBookingHandler_availability_count(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t)
	c.Params = gin.Params{{Key: "id", Value: "2"}}
	c.Request = httptest.NewRequest("GET", "/buses/2/availability?date=2026-09-10", nil)

	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	mockService.On("AvailableCount", c.Request.Context(), int64(2), date).Return(37, nil)

	handler.availability(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, float64(37), response["available_seats"])
}

func TestBookingHandler_availability_singleSeat(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t)
	c.Params = gin.Params{{Key: "id", Value: "2"}}
	c.Request = httptest.NewRequest("GET", "/buses/2/availability?date=2026-09-10&seat=10", nil)

	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	mockService.On("IsAvailable", c.Request.Context(), int64(2), 10, date).Return(false, nil)

	handler.availability(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, false, response["available"])
}

func TestBookingHandler_seatMap(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t)
	c.Params = gin.Params{{Key: "id", Value: "2"}}
	c.Request = httptest.NewRequest("GET", "/buses/2/seats?date=2026-09-10", nil)

	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	seats := []domain.Seat{
		{SeatNumber: 1, State: domain.SeatStateAvailable},
		{SeatNumber: 2, State: domain.SeatStateOccupied, BookingID: 11},
	}
	mockService.On("SeatMap", c.Request.Context(), int64(2), date).Return(seats, nil)

	handler.seatMap(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"seats"`)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_seatMap_missingDate(t *testing.T) {
	mockService := &MockReservationUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t)
	c.Params = gin.Params{{Key: "id", Value: "2"}}
	c.Request = httptest.NewRequest("GET", "/buses/2/seats", nil)

	handler.seatMap(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "SeatMap")
}
