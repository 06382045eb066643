package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/busreservation/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockFleetUseCase is a mock implementation of fleet.FleetUseCase
type MockFleetUseCase struct {
	mock.Mock
}

func (m *MockFleetUseCase) CreateBus(ctx context.Context, bus *domain.Bus) error {
	args := m.Called(ctx, bus)
	return args.Error(0)
}

func (m *MockFleetUseCase) GetBus(ctx context.Context, id int64) (*domain.Bus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bus), args.Error(1)
}

func (m *MockFleetUseCase) ListBuses(ctx context.Context, activeOnly bool) ([]domain.Bus, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]domain.Bus), args.Error(1)
}

func (m *MockFleetUseCase) UpdateBus(ctx context.Context, bus *domain.Bus) error {
	args := m.Called(ctx, bus)
	return args.Error(0)
}

func (m *MockFleetUseCase) DeleteBus(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFleetUseCase) CreateRoute(ctx context.Context, route *domain.Route) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *MockFleetUseCase) GetRoute(ctx context.Context, id int64) (*domain.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Route), args.Error(1)
}

func (m *MockFleetUseCase) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Route), args.Error(1)
}

func (m *MockFleetUseCase) UpdateRoute(ctx context.Context, route *domain.Route) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *MockFleetUseCase) DeleteRoute(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFleetUseCase) CreateSchedule(ctx context.Context, schedule *domain.Schedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockFleetUseCase) GetSchedule(ctx context.Context, id int64) (*domain.Schedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schedule), args.Error(1)
}

func (m *MockFleetUseCase) ListSchedules(ctx context.Context, busID int64) ([]domain.Schedule, error) {
	args := m.Called(ctx, busID)
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

func (m *MockFleetUseCase) UpdateSchedule(ctx context.Context, schedule *domain.Schedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockFleetUseCase) DeleteSchedule(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestBusHandler_list(t *testing.T) {
	mockService := &MockFleetUseCase{}
	handler := NewBusHandler(mockService)

	c, w := testContext(t)
	c.Request = httptest.NewRequest("GET", "/buses", nil)

	buses := []domain.Bus{{ID: 1, Number: "KA-01-1234", Category: domain.BusCategoryAC, TotalSeats: 40}}
	mockService.On("ListBuses", c.Request.Context(), false).Return(buses, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "KA-01-1234")
}

func TestBusHandler_list_activeOnly(t *testing.T) {
	mockService := &MockFleetUseCase{}
	handler := NewBusHandler(mockService)

	c, w := testContext(t)
	c.Request = httptest.NewRequest("GET", "/buses?active=true", nil)

	mockService.On("ListBuses", c.Request.Context(), true).Return([]domain.Bus{}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBusHandler_create(t *testing.T) {
	mockService := &MockFleetUseCase{}
	handler := NewBusHandler(mockService)

	c, w := testContext(t)
	body, _ := json.Marshal(busRequest{
		Number:        "KA-01-1234",
		Name:          "City Express",
		Category:      "DELUXE",
		TotalSeats:    40,
		BaseFareCents: 1500,
	})
	c.Request = httptest.NewRequest("POST", "/admin/buses", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateBus", c.Request.Context(), mock.MatchedBy(func(b *domain.Bus) bool {
		return b.Number == "KA-01-1234" && b.Category == domain.BusCategoryDeluxe && b.TotalSeats == 40
	})).Return(nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestBusHandler_create_invalid(t *testing.T) {
	mockService := &MockFleetUseCase{}
	handler := NewBusHandler(mockService)

	c, w := testContext(t)
	body, _ := json.Marshal(busRequest{Number: "", Category: "DELUXE", TotalSeats: 40})
	c.Request = httptest.NewRequest("POST", "/admin/buses", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateBus", c.Request.Context(), mock.Anything).Return(domain.ErrInvalidInput)

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBusHandler_delete_inService(t *testing.T) {
	mockService := &MockFleetUseCase{}
	handler := NewBusHandler(mockService)

	c, w := testContext(t)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("DELETE", "/admin/buses/1", nil)

	mockService.On("DeleteBus", c.Request.Context(), int64(1)).Return(domain.ErrBusInService)

	handler.delete(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBusHandler_delete(t *testing.T) {
	mockService := &MockFleetUseCase{}
	handler := NewBusHandler(mockService)

	c, w := testContext(t)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("DELETE", "/admin/buses/1", nil)

	mockService.On("DeleteBus", c.Request.Context(), int64(1)).Return(nil)

	handler.delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBusHandler_get_notFound(t *testing.T) {
	mockService := &MockFleetUseCase{}
	handler := NewBusHandler(mockService)

	c, w := testContext(t)
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	c.Request = httptest.NewRequest("GET", "/buses/9", nil)

	mockService.On("GetBus", c.Request.Context(), int64(9)).Return(nil, domain.ErrBusNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
