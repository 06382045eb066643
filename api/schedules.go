package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/busreservation/internal/domain"
	"github.com/mkravets/busreservation/internal/service/fleet"
)

type ScheduleHandler struct {
	service fleet.FleetUseCase
}

type scheduleRequest struct {
	BusID         int64     `json:"bus_id"`
	RouteID       int64     `json:"route_id"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
}

func NewScheduleHandler(service fleet.FleetUseCase) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

func (h *ScheduleHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
}

func (h *ScheduleHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

// list returns every schedule, or only a single bus's schedules when
// ?bus_id= is present.
func (h *ScheduleHandler) list(c *gin.Context) {
	var busID int64
	if raw := c.Query("bus_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bus_id"})
			return
		}
		busID = parsed
	}
	schedules, err := h.service.ListSchedules(c.Request.Context(), busID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedules)
}

func (h *ScheduleHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	schedule, err := h.service.GetSchedule(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (h *ScheduleHandler) create(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	schedule := &domain.Schedule{
		BusID:         req.BusID,
		RouteID:       req.RouteID,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
	}
	if err := h.service.CreateSchedule(c.Request.Context(), schedule); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

func (h *ScheduleHandler) update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	schedule := &domain.Schedule{
		ID:            id,
		BusID:         req.BusID,
		RouteID:       req.RouteID,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
	}
	if err := h.service.UpdateSchedule(c.Request.Context(), schedule); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (h *ScheduleHandler) delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.DeleteSchedule(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
